package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()

	req.NoError(err)
	req.Equal(":5000", cfg.Server.Port)
	req.Equal(15*time.Second, cfg.Server.ReadTimeout)
	req.Equal("*", cfg.Server.AllowedOrigin)
	req.False(cfg.Presence.SweepEnabled)
	req.Equal(15*time.Second, cfg.Presence.SweepInterval)
	req.Equal(10*time.Second, cfg.Presence.Timeout)
	req.Equal("INFO", cfg.Log.Level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", ":9000")
	t.Setenv("DATABASE_URL", "badger:///tmp/batepapo")
	t.Setenv("PRESENCE_SWEEP_ENABLED", "true")
	t.Setenv("PRESENCE_TIMEOUT", "30s")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(":9000", cfg.Server.Port)
	req.Equal("badger:///tmp/batepapo", cfg.Database.URL)
	req.True(cfg.Presence.SweepEnabled)
	req.Equal(30*time.Second, cfg.Presence.Timeout)
}

func TestLoad_Rejects_Invalid_Values(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("READ_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("non positive timeout", func(t *testing.T) {
		t.Setenv("PRESENCE_TIMEOUT", "0s")
		_, err := Load()
		require.ErrorContains(t, err, "PRESENCE_TIMEOUT")
	})
}
