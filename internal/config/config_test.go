package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8086", cfg.Server.Port)
	assert.Equal(t, "reminders", cfg.MongoDB.Database)
	assert.Equal(t, 240*time.Second, cfg.Scan.TimeBudget)
	assert.Equal(t, time.Minute, cfg.Scan.ContinuationDelay)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCAN_TIME_BUDGET_MS", "1500")
	t.Setenv("SCAN_CONTINUATION_DELAY_MS", "250")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scan.TimeBudget)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.ContinuationDelay)
}

func TestValidateConfigRejectsNonPositiveBudgets(t *testing.T) {
	t.Setenv("SCAN_TIME_BUDGET_MS", "0")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SCAN_TIME_BUDGET_MS", "1000")
	t.Setenv("SCAN_CONTINUATION_DELAY_MS", "-5")

	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestGetEnvIntIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCAN_TIME_BUDGET_MS", "four minutes")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 240*time.Second, cfg.Scan.TimeBudget)
}
