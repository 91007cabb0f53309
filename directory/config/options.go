package config

import (
	"time"

	"github.com/Astemirdum/library-sync/pkg/database"
	"go.uber.org/zap/zapcore"
)

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = timeout
	}
}

func WithDatabase(db database.DB) Option {
	return func(c *Config) {
		c.Database = db
	}
}
