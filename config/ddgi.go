// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DDGILODConfig is one level-of-detail entry in the DDGI volume table.
type DDGILODConfig struct {
	VolumeResolution    uint32 `yaml:"VolumeResolution"`
	RelitZoneResolution uint32 `yaml:"RelitZoneResolution"`
	ProbesSpacing       float32 `yaml:"ProbesSpacing"`
	RelitPriority       float32 `yaml:"RelitPriority"`
	ForwardAlignment    float32 `yaml:"ForwardAlignment"`
	HeightAlignment     float32 `yaml:"HeightAlignment"`
}

// DDGIConfig is the full DDGI configuration file: a table of
// per-LOD entries plus global relighting parameters.
type DDGIConfig struct {
	LODs []DDGILODConfig `yaml:"LODs"`

	LocalRelitRaysNumPerProbe  uint32  `yaml:"LocalRelitRaysNumPerProbe"`
	GlobalRelitRaysPerProbe    uint32  `yaml:"GlobalRelitRaysPerProbe"`
	GlobalRelitHysteresis      float32 `yaml:"GlobalRelitHysteresis"`
	LocalRelitHysteresis       float32 `yaml:"LocalRelitHysteresis"`
	MinHysteresis              float32 `yaml:"MinHysteresis"`
	MaxHysteresis              float32 `yaml:"MaxHysteresis"`
	LocalRelitProbeGridSize    uint32  `yaml:"LocalRelitProbeGridSize"`
	RelitVolumesBudget         uint32  `yaml:"RelitVolumesBudget"`
	ProbeIlluminanceDataRes    uint32  `yaml:"ProbeIlluminanceDataRes"`
	ProbeHitDistanceDataRes    uint32  `yaml:"ProbeHitDistanceDataRes"`
}

// ParseDDGIConfig reads a YAML DDGI configuration document.
func ParseDDGIConfig(r io.Reader) (DDGIConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return DDGIConfig{}, fmt.Errorf("config: reading ddgi config: %w", err)
	}

	var cfg DDGIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DDGIConfig{}, fmt.Errorf("config: ddgi config yaml: %w", err)
	}
	if len(cfg.LODs) == 0 {
		return DDGIConfig{}, fmt.Errorf("config: ddgi config: at least one LOD entry required")
	}
	return cfg, nil
}
