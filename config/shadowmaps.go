// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads the core's persisted state: the shadow-map tier
// capacity file, the DDGI volume configuration, and the material
// technique registry.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ShadowMapsSettings holds the per-tier capacity of the shadow-map pool,
// loaded from a flat key=value text file.
type ShadowMapsSettings struct {
	HighQualityShadowMaps   uint32
	MediumQualityShadowMaps uint32
	LowQualityShadowMaps    uint32
}

// ParseShadowMapsSettings reads a key=value file (one pair per line,
// '#' starts a comment) recognizing HighQualityShadowMaps,
// MediumQualityShadowMaps, and LowQualityShadowMaps.
func ParseShadowMapsSettings(r io.Reader) (ShadowMapsSettings, error) {
	var settings ShadowMapsSettings

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return ShadowMapsSettings{}, fmt.Errorf("config: shadow maps settings line %d: missing '='", lineNo)
		}
		key = strings.TrimSpace(key)
		parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return ShadowMapsSettings{}, fmt.Errorf("config: shadow maps settings line %d: %w", lineNo, err)
		}

		switch key {
		case "HighQualityShadowMaps":
			settings.HighQualityShadowMaps = uint32(parsed)
		case "MediumQualityShadowMaps":
			settings.MediumQualityShadowMaps = uint32(parsed)
		case "LowQualityShadowMaps":
			settings.LowQualityShadowMaps = uint32(parsed)
		default:
			return ShadowMapsSettings{}, fmt.Errorf("config: shadow maps settings line %d: unknown key %q", lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return ShadowMapsSettings{}, fmt.Errorf("config: reading shadow maps settings: %w", err)
	}
	return settings, nil
}
