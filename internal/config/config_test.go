// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"mrz-scan/internal/mrz"
)

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	// With no config file, should return defaults without error
	cfg := LoadConfigOrDefault("")
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format == "" {
		t.Error("expected default format to be set")
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	// A path that doesn't exist should fall back to defaults
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
}

func TestLoadConfigOrDefault_ValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
defaults:
  format: json
  verbose: true
engine:
  pivot_year: 70
  correction_budget: 3
  format_priority: [TD1, TD3]
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if !cfg.Defaults.Verbose {
		t.Error("expected verbose=true")
	}

	opts := cfg.EngineOptions()
	if opts.PivotYear != 70 {
		t.Errorf("expected pivot year 70, got %d", opts.PivotYear)
	}
	if opts.CorrectionBudget != 3 {
		t.Errorf("expected correction budget 3, got %d", opts.CorrectionBudget)
	}
	want := []mrz.Format{mrz.TD1, mrz.TD3}
	if len(opts.FormatPriority) != len(want) {
		t.Fatalf("expected %d priority entries, got %d", len(want), len(opts.FormatPriority))
	}
	for i, f := range want {
		if opts.FormatPriority[i] != f {
			t.Errorf("priority[%d] = %v, want %v", i, opts.FormatPriority[i], f)
		}
	}
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(configPath, []byte(":::invalid yaml:::"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Should fall back to defaults, not panic
	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults on parse error)")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Engine.PivotYear != 50 {
		t.Errorf("expected default pivot year 50, got %d", cfg.Engine.PivotYear)
	}
	if cfg.Engine.CorrectionBudget != 2 {
		t.Errorf("expected default correction budget 2, got %d", cfg.Engine.CorrectionBudget)
	}
}

func TestLoadConfig_ProfilesInitialized(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Profiles == nil {
		t.Error("expected profiles map to be initialized")
	}
	// Default strict profile should exist
	if _, ok := cfg.Profiles["strict"]; !ok {
		t.Error("expected 'strict' profile to exist in defaults")
	}
}

func TestLoadConfig_RejectsBadEngineSettings(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
engine:
  format_priority: [TD9]
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected an error for an unknown format_priority entry")
	}
}

func TestEngineOptionsForProfile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The strict profile pins the budget down to single-substitution repairs.
	opts := cfg.EngineOptionsForProfile("strict")
	if opts.CorrectionBudget != 1 {
		t.Errorf("strict profile budget = %d, want 1", opts.CorrectionBudget)
	}

	// Unknown profiles fall back to the global engine section.
	opts = cfg.EngineOptionsForProfile("nope")
	if opts.CorrectionBudget != cfg.Engine.CorrectionBudget {
		t.Errorf("fallback budget = %d, want %d", opts.CorrectionBudget, cfg.Engine.CorrectionBudget)
	}
}
