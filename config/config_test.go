package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EVENT_ID", "E1")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.ServerPort)
	assert.Equal(t, "http://localhost:8081", cfg.EventServiceURL)
	assert.Equal(t, "E1", cfg.EventID)
	assert.Empty(t, cfg.RabbitURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.ScanResetDelay)
}

func TestLoad_EventIDRequired(t *testing.T) {
	t.Setenv("EVENT_ID", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EVENT_ID", "E9")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SCAN_RESET_DELAY", "1s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, time.Second, cfg.ScanResetDelay)
}
