package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmilefood/rescuesync/pkg/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, constants.DefaultJobTimeout, cfg.JobTimeout)
	assert.NotEmpty(t, cfg.OutDir)
	assert.Equal(t, "bearer", cfg.AuthScheme)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOB_TIMEOUT", "90s")
	t.Setenv("OUT_DIR", "/tmp/reports")
	t.Setenv("SF_AUTH_SCHEME", "session")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.EnvLogLevel)
	assert.Equal(t, 90*time.Second, cfg.JobTimeout)
	assert.Equal(t, "/tmp/reports", cfg.OutDir)
	assert.Equal(t, "session", cfg.AuthScheme)
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "yaml"}
	cfg.UpdateFromFlags(true, false, true, "", "warn")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "yaml", cfg.Format, "empty flag keeps env value")
	assert.Equal(t, "warn", cfg.LogLevel)
}
