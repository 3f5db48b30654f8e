package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Run("Applies defaults for missing keys", func(t *testing.T) {
		// Given: a config file with only the server urls
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "server-url: http://game.local\nws-server-url: ws://game.local\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: loading it
		conf := MustLoad(path)

		// Then: urls are read and the rest falls back to defaults
		assert.Equal(t, "http://game.local", conf.ServerURL)
		assert.Equal(t, "ws://game.local", conf.WSServerURL)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 10*time.Second, conf.MoveTimeout)
		assert.Equal(t, ReconnectNone, conf.ReconnectPolicy)
		assert.Equal(t, StoreMemory, conf.SessionStore)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Panics on unknown session store", func(t *testing.T) {
		// Given: a config file with an unsupported store
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("session-store: etcd\n"), 0o600))

		// Then: loading panics
		assert.Panics(t, func() { MustLoad(path) })
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerURL:       "http://localhost:8000",
			WSServerURL:     "ws://localhost:8000",
			SessionStore:    StoreRedis,
			ReconnectPolicy: ReconnectNone,
		}
	}

	t.Run("Accepts a complete config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Rejects reconnect policies other than none", func(t *testing.T) {
		conf := valid()
		conf.ReconnectPolicy = "backoff"

		assert.ErrorIs(t, conf.Validate(), ErrUnknownReconnectPolicy)
	})

	t.Run("Rejects empty urls", func(t *testing.T) {
		conf := valid()
		conf.WSServerURL = ""

		assert.ErrorIs(t, conf.Validate(), ErrEmptyURL)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("Reads overrides from the environment", func(t *testing.T) {
		// Given: a redis store configured through the environment
		t.Setenv("SESSION_STORE", StoreRedis)
		t.Setenv("REDIS_HOST", "cache")
		t.Setenv("SERVER_URL", "http://game.local")

		// When: loading without a file
		conf, err := LoadEnv()

		// Then: overrides and defaults are both applied
		require.NoError(t, err)
		assert.Equal(t, StoreRedis, conf.SessionStore)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "http://game.local", conf.ServerURL)
		assert.Equal(t, "ws://localhost:8000", conf.WSServerURL)
	})

	t.Run("Rejects an unknown store", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "etcd")

		_, err := LoadEnv()

		require.ErrorIs(t, err, ErrUnknownStore)
	})
}
