// Package config loads the optional parlay.yaml next to a compiled
// script (SPEC_FULL.md §7.2), grounded on straga-Mimir_lite's apoc
// package pattern of a plain YAML-tagged struct plus a
// LoadConfigOrDefault fallback when the file is absent.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"parlay/internal/relation"
)

// Config holds the CompilerContext choices a parlay.yaml may override
// (SPEC_FULL.md §2 CompilerContext, §4.9 backend/partition defaults).
type Config struct {
	Backend    string `yaml:"backend"`
	Partitions int    `yaml:"partitions"`
	NBD        int    `yaml:"n_bd"`
	Debug      bool   `yaml:"debug"`
}

// Default returns the spec's defaults: "single" backend, one
// partition, n_bd = 1 (4.9).
func Default() *Config {
	return &Config{
		Backend:    "single",
		Partitions: 1,
		NBD:        relation.DefaultBoundaryDepth,
	}
}

// Load reads a YAML config file, filling in defaults for any field the
// file omits rather than zeroing them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Backend == "" {
		cfg.Backend = "single"
	}
	if cfg.Partitions == 0 {
		cfg.Partitions = 1
	}
	if cfg.NBD == 0 {
		cfg.NBD = relation.DefaultBoundaryDepth
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, otherwise returns Default().
func LoadOrDefault(path string) *Config {
	if path == "" {
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}
