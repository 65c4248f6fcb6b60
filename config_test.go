package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("TACTC_STDLIB", "/opt/tact/stdlib")
	t.Setenv("TACTC_VERBOSE", "true")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("TACTC_HISTORY", "/tmp/history")
	t.Setenv("TACTC_DEBOUNCE_MS", "25")
	t.Setenv("TACTC_OUTPUT", "build")
	t.Setenv("TACTC_PRAGMA", ">=0.4.6")

	cfg := LoadConfig()
	if cfg.StdlibRoot != "/opt/tact/stdlib" {
		t.Errorf("StdlibRoot = %q", cfg.StdlibRoot)
	}
	if !cfg.Verbose {
		t.Error("Verbose is not set")
	}
	if !cfg.NoColor {
		t.Error("NoColor is not set")
	}
	if cfg.HistoryFile != "/tmp/history" {
		t.Errorf("HistoryFile = %q", cfg.HistoryFile)
	}
	if cfg.Debounce != 25*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Debounce)
	}
	if cfg.OutputDir != "build" || cfg.Pragma != ">=0.4.6" {
		t.Errorf("OutputDir = %q, Pragma = %q", cfg.OutputDir, cfg.Pragma)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("TACTC_DEBOUNCE_MS", "")
	t.Setenv("TACTC_HISTORY", "")
	cfg := LoadConfig()
	if cfg.Debounce != defaultDebounceMS*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Debounce)
	}
	if filepath.Base(cfg.HistoryFile) != ".tactc_history" {
		t.Errorf("HistoryFile = %q", cfg.HistoryFile)
	}
}

func TestLoadConfigRereadsEnvironment(t *testing.T) {
	t.Setenv("TACTC_DEBOUNCE_MS", "40")
	t.Setenv("TACTC_PRAGMA", ">=0.4.5")
	if cfg := LoadConfig(); cfg.Debounce != 40*time.Millisecond || cfg.Pragma != ">=0.4.5" {
		t.Fatalf("Debounce = %v, Pragma = %q", cfg.Debounce, cfg.Pragma)
	}

	t.Setenv("TACTC_DEBOUNCE_MS", "")
	t.Setenv("TACTC_PRAGMA", ">=0.4.6")
	cfg := LoadConfig()
	if cfg.Debounce != defaultDebounceMS*time.Millisecond {
		t.Errorf("Debounce = %v, want %v", cfg.Debounce, defaultDebounceMS*time.Millisecond)
	}
	if cfg.Pragma != ">=0.4.6" {
		t.Errorf("Pragma = %q, want %q", cfg.Pragma, ">=0.4.6")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		outputDir string
		input     string
		want      string
	}{
		{"", "wallet.tact", "wallet.fc"},
		{"", filepath.Join("src", "wallet.tact"), filepath.Join("src", "wallet.fc")},
		{"", "notes.txt", "notes.txt.fc"},
		{"out", filepath.Join("src", "wallet.tact"), filepath.Join("out", "wallet.fc")},
	}
	for _, tt := range tests {
		cfg := &Config{OutputDir: tt.outputDir}
		if got := cfg.outputPath(tt.input); got != tt.want {
			t.Errorf("outputPath(%q) with OutputDir %q = %q, want %q", tt.input, tt.outputDir, got, tt.want)
		}
	}
}
