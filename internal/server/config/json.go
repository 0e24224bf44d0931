package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/flagx"
	"github.com/dmitrijs2005/writerlab/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Fields left out of the
// file keep their previous value.
type JsonConfig struct {
	HTTPAddr            *string         `json:"http_addr"`
	GRPCHealthAddr      *string         `json:"grpc_health_addr"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SessionSecrets      []string        `json:"session_secrets"`
	Production          *bool           `json:"production"`
	SessionMaxAge       *timex.Duration `json:"session_max_age"`
	StoreTimeout        *timex.Duration `json:"store_timeout"`
	ShutdownTimeout     *timex.Duration `json:"shutdown_timeout"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	LogLevel            *string         `json:"log_level"`
	RedisAddr           *string         `json:"redis_addr"`
	LoginMaxAttempts    *int            `json:"login_max_attempts"`
	LoginWindow         *timex.Duration `json:"login_window"`
	S3AccessKey         *string         `json:"s3_access_key"`
	S3SecretKey         *string         `json:"s3_secret_key"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	S3PresignExpiry     *timex.Duration `json:"s3_presign_expiry"`
}

// parseJson overlays the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if len(c.SessionSecrets) > 0 {
		config.SessionSecrets = append([]string(nil), c.SessionSecrets...)
	}
	if c.Production != nil {
		config.Production = *c.Production
	}
	setDuration(&config.SessionMaxAge, c.SessionMaxAge)
	setDuration(&config.StoreTimeout, c.StoreTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.RedisAddr, c.RedisAddr)
	if c.LoginMaxAttempts != nil {
		config.LoginMaxAttempts = *c.LoginMaxAttempts
	}
	setDuration(&config.LoginWindow, c.LoginWindow)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.S3PresignExpiry, c.S3PresignExpiry)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
