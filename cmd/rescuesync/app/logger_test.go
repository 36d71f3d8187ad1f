package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{name: "default level when no flags set", config: &Config{}, expected: "info"},
		{name: "verbose flag sets debug", config: &Config{Verbose: true}, expected: "debug"},
		{name: "quiet flag sets warn", config: &Config{Quiet: true}, expected: "warn"},
		{name: "quiet wins over verbose", config: &Config{Verbose: true, Quiet: true}, expected: "warn"},
		{name: "explicit level wins", config: &Config{LogLevel: "error", Verbose: true}, expected: "error"},
		{name: "invalid level falls back to info", config: &Config{LogLevel: "loud"}, expected: "info"},
		{name: "env level below flags", config: &Config{EnvLogLevel: "trace", Quiet: true}, expected: "warn"},
		{name: "env level used alone", config: &Config{EnvLogLevel: "trace"}, expected: "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.config))
		})
	}
}
