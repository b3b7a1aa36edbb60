package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Contains(t, cfg.DSN, "classhall")
	assert.Equal(t, defaultHeartbeatSec, cfg.Live.HeartbeatIntervalSec)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := []byte(`
port: 9000
env: production
dsn: "user:pass@tcp(db:3306)/hall?parseTime=True"
redis_url: "redis://cache:6379/1"
jwt_secret: "topsecret"
live:
  heartbeat_interval_sec: 5
  max_session_hours: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "user:pass@tcp(db:3306)/hall?parseTime=True", cfg.DSN)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, "topsecret", cfg.JWTSecret)
	assert.Equal(t, 5, cfg.Live.HeartbeatIntervalSec)
	assert.Equal(t, 2, cfg.Live.MaxSessionHours)
	assert.Equal(t, defaultInviteTTLHours, cfg.Live.InviteTTLHours)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0o600))

	t.Setenv("PORT", "7777")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}
