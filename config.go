package main

import (
	"path/filepath"
	"time"

	"github.com/xyproto/env/v2"
)

// Config holds the settings that can be given as environment variables.
// Command line flags take precedence.
type Config struct {
	StdlibRoot  string        // TACTC_STDLIB
	Verbose     bool          // TACTC_VERBOSE
	NoColor     bool          // NO_COLOR
	HistoryFile string        // TACTC_HISTORY
	Debounce    time.Duration // TACTC_DEBOUNCE_MS
	OutputDir   string        // TACTC_OUTPUT
	Pragma      string        // TACTC_PRAGMA
}

const defaultDebounceMS = 500

// LoadConfig reads the configuration from the environment. env/v2 caches
// the environment, so it is read again on every call.
func LoadConfig() *Config {
	env.Load()
	return &Config{
		StdlibRoot:  env.Str("TACTC_STDLIB"),
		Verbose:     env.Bool("TACTC_VERBOSE"),
		NoColor:     env.Has("NO_COLOR"),
		HistoryFile: env.Str("TACTC_HISTORY", filepath.Join(env.HomeDir(), ".tactc_history")),
		Debounce:    time.Duration(env.Int("TACTC_DEBOUNCE_MS", defaultDebounceMS)) * time.Millisecond,
		OutputDir:   env.Str("TACTC_OUTPUT"),
		Pragma:      env.Str("TACTC_PRAGMA"),
	}
}

// outputPath is where the FunC code for input is written when no -o flag
// is given: next to the input, or in OutputDir when it is set
func (c *Config) outputPath(input string) string {
	name := input
	if ext := filepath.Ext(name); ext == ".tact" {
		name = name[:len(name)-len(ext)]
	}
	name += ".fc"
	if c.OutputDir != "" {
		return filepath.Join(c.OutputDir, filepath.Base(name))
	}
	return name
}
