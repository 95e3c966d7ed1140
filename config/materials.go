// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MaterialTechnique is one named shading technique's shader source
// location and ray-tracing support flag.
type MaterialTechnique struct {
	ShadersPath             string `yaml:"ShadersPath"`
	RayTracingWithClosestHit bool  `yaml:"RayTracingWithClosestHit"`
}

// MaterialTechniquesRegistry maps a technique name to its definition, as
// loaded from the `Techniques:` YAML document.
type MaterialTechniquesRegistry struct {
	Techniques map[string]MaterialTechnique `yaml:"Techniques"`
}

// ParseMaterialTechniquesRegistry reads the YAML material technique
// registry file.
func ParseMaterialTechniquesRegistry(r io.Reader) (MaterialTechniquesRegistry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return MaterialTechniquesRegistry{}, fmt.Errorf("config: reading material techniques: %w", err)
	}

	var reg MaterialTechniquesRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return MaterialTechniquesRegistry{}, fmt.Errorf("config: material techniques yaml: %w", err)
	}
	for name, tech := range reg.Techniques {
		if tech.ShadersPath == "" {
			return MaterialTechniquesRegistry{}, fmt.Errorf("config: material technique %q missing ShadersPath", name)
		}
	}
	return reg, nil
}

// Lookup returns the technique registered under name.
func (r MaterialTechniquesRegistry) Lookup(name string) (MaterialTechnique, bool) {
	tech, ok := r.Techniques[name]
	return tech, ok
}
