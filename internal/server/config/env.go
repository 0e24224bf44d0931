package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv copies variables from path into the process environment without
// overriding ones already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// parseEnv overlays environment variables. SESSION_SECRETS (comma separated,
// primary first) wins over the single SESSION_SECRET.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get("SESSION_SECRETS"); ok {
		config.SessionSecrets = splitList(v)
	} else if v, ok := get("SESSION_SECRET"); ok {
		config.SessionSecrets = []string{v}
	}

	if v, ok := get("APP_ENV"); ok {
		config.Production = strings.EqualFold(strings.TrimSpace(v), "production")
	}

	strs := map[string]*string{
		"DATABASE_DSN":  &config.DatabaseDSN,
		"HTTP_ADDR":     &config.HTTPAddr,
		"REDIS_ADDR":    &config.RedisAddr,
		"LOG_LEVEL":     &config.LogLevel,
		"S3_ACCESS_KEY": &config.S3AccessKey,
		"S3_SECRET_KEY": &config.S3SecretKey,
		"S3_BUCKET":     &config.S3Bucket,
		"S3_REGION":     &config.S3Region,
		"S3_ENDPOINT":   &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get("LOGIN_MAX_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.LoginMaxAttempts = n
		}
	}
}
