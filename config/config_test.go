package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default configuration", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

		assert.Equal(t, 100, cfg.Preprocess.MaxLen)
		assert.Equal(t, 0, cfg.Preprocess.PadID)
		assert.Equal(t, 1, cfg.Preprocess.OOVID)

		assert.Equal(t, "float32", cfg.Classifier.InputType)
		assert.Equal(t, 1, cfg.Classifier.Sessions)
		assert.Equal(t, CacheNone, cfg.Cache.Backend)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Enrich.Polarity)
	})

	t.Run("reads from environment variables", func(t *testing.T) {
		t.Setenv("EMOTION_SERVER_PORT", "9090")
		t.Setenv("EMOTION_ARTIFACTS_MODEL_PATH", "/srv/model.onnx")
		t.Setenv("EMOTION_CLASSIFIER_SESSIONS", "4")
		t.Setenv("EMOTION_CACHE_TTL", "90s")
		t.Setenv("EMOTION_ENRICH_POLARITY", "true")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "/srv/model.onnx", cfg.Artifacts.ModelPath)
		assert.Equal(t, 4, cfg.Classifier.Sessions)
		assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
		assert.True(t, cfg.Enrich.Polarity)
	})

	t.Run("reads yaml file below environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
  mode: debug
cache:
  backend: memory
  size: 10
preprocess:
  oov_policy: skip
`), 0o600))
		t.Setenv("EMOTION_SERVER_PORT", "7001")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 7001, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.Mode)
		assert.Equal(t, CacheMemory, cfg.Cache.Backend)
		assert.Equal(t, 10, cfg.Cache.Size)
		assert.Equal(t, "skip", cfg.Preprocess.OOVPolicy)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		t.Setenv("EMOTION_CACHE_BACKEND", "memcached")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"max len", func(c *Config) { c.Preprocess.MaxLen = 0 }},
		{"negative pad", func(c *Config) { c.Preprocess.PadID = -1 }},
		{"oov policy", func(c *Config) { c.Preprocess.OOVPolicy = "drop" }},
		{"input type", func(c *Config) { c.Classifier.InputType = "float16" }},
		{"output", func(c *Config) { c.Classifier.Output = "scores" }},
		{"sessions", func(c *Config) { c.Classifier.Sessions = 0 }},
		{"memory size", func(c *Config) { c.Cache.Backend = CacheMemory; c.Cache.Size = 0 }},
		{"valkey address", func(c *Config) { c.Cache.Backend = CacheValkey; c.Valkey.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("EMOTION_SERVER_PORT"))
	assert.Equal(t, "artifacts.model_path", envKey("EMOTION_ARTIFACTS_MODEL_PATH"))
	assert.Equal(t, "classifier.shared_library_path", envKey("EMOTION_CLASSIFIER_SHARED_LIBRARY_PATH"))
}

func TestLoadEnv(t *testing.T) {
	// Missing files only log a warning.
	assert.NotPanics(t, func() { LoadEnv("does-not-exist") })
}
