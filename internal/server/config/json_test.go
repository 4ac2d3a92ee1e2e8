package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"http_addr":           ":8088",
		"grpc_addr":           "www.example:9000",
		"database_dsn":        "postgres://x",
		"secret_key":          "my_secret_key",
		"access_token_ttl":    "1m",
		"refresh_token_ttl":   "3m",
		"s3_bucket":           "bucket",
		"amqp_url":            "amqp://mq",
		"replicate_api_token": "tok",
		"enhance_timeout":     "90s",
		"log_level":           "debug",
		"stroke_extraction":   "otsu",
	})
	partial := writeTempJSON(t, dir, "partial.json", map[string]any{
		"secret_key": "only_this",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, ":8088", cfg.HTTPAddr)
		assert.Equal(t, "www.example:9000", cfg.GRPCAddr)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenTTL)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "amqp://mq", cfg.AMQPURL)
		assert.Equal(t, "tok", cfg.ReplicateToken)
		assert.Equal(t, 90*time.Second, cfg.EnhanceTimeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "otsu", cfg.StrokeMethod)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only_this", cfg.SecretKey)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	})

	t.Run("no config flag leaves config alone", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", AccessTokenTTL: 2 * time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenTTL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
