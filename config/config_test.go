package config

import (
	"strings"
	"testing"
)

func TestParseShadowMapsSettings(t *testing.T) {
	input := `# pool capacities
HighQualityShadowMaps=2
MediumQualityShadowMaps=4
LowQualityShadowMaps=8
`
	settings, err := ParseShadowMapsSettings(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseShadowMapsSettings: %v", err)
	}
	if settings.HighQualityShadowMaps != 2 || settings.MediumQualityShadowMaps != 4 || settings.LowQualityShadowMaps != 8 {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestParseShadowMapsSettingsRejectsUnknownKey(t *testing.T) {
	_, err := ParseShadowMapsSettings(strings.NewReader("Bogus=1\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestParseShadowMapsSettingsRejectsMalformedLine(t *testing.T) {
	_, err := ParseShadowMapsSettings(strings.NewReader("NotAKeyValuePair\n"))
	if err == nil {
		t.Fatal("expected an error for a line with no '='")
	}
}

func TestParseDDGIConfig(t *testing.T) {
	input := `
LODs:
  - VolumeResolution: 32
    RelitZoneResolution: 8
    ProbesSpacing: 2.0
    RelitPriority: 1.0
    ForwardAlignment: 0.5
    HeightAlignment: 0.5
LocalRelitRaysNumPerProbe: 64
GlobalRelitRaysPerProbe: 128
GlobalRelitHysteresis: 0.95
LocalRelitHysteresis: 0.9
MinHysteresis: 0.5
MaxHysteresis: 0.98
LocalRelitProbeGridSize: 16
RelitVolumesBudget: 4
ProbeIlluminanceDataRes: 8
ProbeHitDistanceDataRes: 16
`
	cfg, err := ParseDDGIConfig(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDDGIConfig: %v", err)
	}
	if len(cfg.LODs) != 1 || cfg.LODs[0].VolumeResolution != 32 {
		t.Fatalf("unexpected LODs: %+v", cfg.LODs)
	}
	if cfg.GlobalRelitRaysPerProbe != 128 {
		t.Fatalf("GlobalRelitRaysPerProbe = %d, want 128", cfg.GlobalRelitRaysPerProbe)
	}
}

func TestParseDDGIConfigRequiresAtLeastOneLOD(t *testing.T) {
	_, err := ParseDDGIConfig(strings.NewReader("LocalRelitRaysNumPerProbe: 1\n"))
	if err == nil {
		t.Fatal("expected an error when no LOD entries are present")
	}
}

func TestParseMaterialTechniquesRegistry(t *testing.T) {
	input := `
Techniques:
  OpaqueDefault:
    ShadersPath: Shaders/Materials/Opaque.hlsl
    RayTracingWithClosestHit: true
  Masked:
    ShadersPath: Shaders/Materials/Masked.hlsl
    RayTracingWithClosestHit: false
`
	reg, err := ParseMaterialTechniquesRegistry(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMaterialTechniquesRegistry: %v", err)
	}
	tech, ok := reg.Lookup("OpaqueDefault")
	if !ok {
		t.Fatal("expected OpaqueDefault technique to be present")
	}
	if !tech.RayTracingWithClosestHit {
		t.Fatal("expected RayTracingWithClosestHit = true")
	}
}

func TestParseMaterialTechniquesRegistryRejectsMissingShadersPath(t *testing.T) {
	input := `
Techniques:
  Broken:
    RayTracingWithClosestHit: false
`
	_, err := ParseMaterialTechniquesRegistry(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected an error for a technique missing ShadersPath")
	}
}
