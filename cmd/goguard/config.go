package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliConfig holds settings read from the environment. Flags override them.
type cliConfig struct {
	Routes      string `env:"GOGUARD_ROUTES"`
	LogLevel    string `env:"GOGUARD_LOG_LEVEL" envDefault:"warn"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisPrefix string `env:"GOGUARD_REDIS_PREFIX" envDefault:"gg"`
	ClientID    string `env:"GOGUARD_CLIENT_ID" envDefault:"cli"`
}

// loadConfig reads an optional .env file and then the environment. environ
// replaces the process environment when non-nil.
func loadConfig(dotenv string, environ map[string]string) (cliConfig, error) {
	var cfg cliConfig

	if environ == nil {
		if err := godotenv.Load(dotenv); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return cfg, fmt.Errorf("load %s: %w", dotenv, err)
			}
		}
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

func newLogger(level string, out zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), out, lvl)
	return zap.New(core), nil
}
