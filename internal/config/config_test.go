package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresBackendURL(t *testing.T) {
	t.Setenv("MEDTRACK_BACKEND_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MEDTRACK_BACKEND_URL", "https://api.medtrack.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7380", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, "medtrack-agent.db", cfg.Storage.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEDTRACK_BACKEND_URL", "https://api.medtrack.example")
	t.Setenv("PORT", "9000")
	t.Setenv("MEDTRACK_DB_PATH", "/tmp/agent.db")
	t.Setenv("MEDTRACK_TIMEZONE", "Europe/Budapest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/tmp/agent.db", cfg.Storage.Path)
	assert.Equal(t, "Europe/Budapest", cfg.Reminders.Timezone)
}

func TestValidate_RejectsBogusTimezone(t *testing.T) {
	t.Setenv("MEDTRACK_BACKEND_URL", "https://api.medtrack.example")
	t.Setenv("MEDTRACK_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}
