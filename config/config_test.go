// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Engine.Policy.LearningRate != 0.1 {
		t.Errorf("Engine.Policy.LearningRate = %v, want 0.1", cfg.Engine.Policy.LearningRate)
	}
	if cfg.Engine.MemorySize != 1000 {
		t.Errorf("Engine.MemorySize = %d, want 1000", cfg.Engine.MemorySize)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "couchwise.yaml")

	content := `
logging:
  level: debug
  format: console
engine:
  memory_size: 250
  policy:
    learning_rate: 0.2
catalog_path: /data/catalog.json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.MemorySize != 250 {
		t.Errorf("Engine.MemorySize = %d, want 250", cfg.Engine.MemorySize)
	}
	if cfg.Engine.Policy.LearningRate != 0.2 {
		t.Errorf("Engine.Policy.LearningRate = %v, want 0.2", cfg.Engine.Policy.LearningRate)
	}
	// Untouched keys keep their defaults.
	if cfg.Engine.Policy.DiscountFactor != 0.9 {
		t.Errorf("Engine.Policy.DiscountFactor = %v, want default 0.9", cfg.Engine.Policy.DiscountFactor)
	}
	if cfg.CatalogPath != "/data/catalog.json" {
		t.Errorf("CatalogPath = %q, want /data/catalog.json", cfg.CatalogPath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COUCHWISE_LOGGING__LEVEL", "warn")
	t.Setenv("COUCHWISE_ENGINE__CACHE_CAPACITY", "64")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Engine.CacheCapacity != 64 {
		t.Errorf("Engine.CacheCapacity = %d, want 64", cfg.Engine.CacheCapacity)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "couchwise.yaml")

	content := `
engine:
  policy:
    learning_rate: -1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() error = nil for invalid learning rate, want error")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() error = nil for missing file, want error")
	}
}
