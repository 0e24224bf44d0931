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

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_addr":         ":8080",
		"database_dsn":      "postgres://db/writerlab",
		"session_secrets":   []string{"new", "old"},
		"production":        true,
		"session_max_age":   "24h",
		"login_window":      "1m",
		"s3_bucket":         "covers",
		"s3_presign_expiry": "5m",
	})

	cfg := defaults()
	require.NoError(t, parseJson(cfg, []string{"-config", path}))

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres://db/writerlab", cfg.DatabaseDSN)
	assert.Equal(t, []string{"new", "old"}, cfg.SessionSecrets)
	assert.True(t, cfg.Production)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, time.Minute, cfg.LoginWindow)
	assert.Equal(t, "covers", cfg.S3Bucket)
	assert.Equal(t, 5*time.Minute, cfg.S3PresignExpiry)

	// untouched keys keep defaults
	assert.Equal(t, ":50051", cfg.GRPCHealthAddr)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
}

func Test_parseJson_NoFile(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
	assert.Equal(t, defaults(), cfg)
}

func Test_parseJson_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

	assert.Error(t, parseJson(defaults(), []string{"-c", bad}))
	assert.Error(t, parseJson(defaults(), []string{"-c", filepath.Join(t.TempDir(), "missing.json")}))
}
