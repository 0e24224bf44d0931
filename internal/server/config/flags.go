package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/writerlab/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-r", "-l", "-production"}

// parseFlags overlays command-line flags:
//
//	-a string   HTTP listen address
//	-g string   gRPC health listen address
//	-d string   PostgreSQL DSN
//	-s string   session secret (replaces the configured list)
//	-r string   Redis address for the login limiter
//	-l string   log level
//	-production run in production mode (Secure cookies)
//
// Other flags in args are ignored so that tools can layer their own flag sets.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var secret string
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&secret, "s", "", "session secret")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.Production, "production", config.Production, "production mode")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if secret != "" {
		config.SessionSecrets = []string{secret}
	}
	return nil
}
