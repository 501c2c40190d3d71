// Package config loads the daemon configuration from a file and
// environment variables, and validates it before anything starts.
package config

// Config holds all daemon configuration, grouped by concern.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Pool   PoolConfig   `mapstructure:"pool"   validate:"required"`
	Log    LogConfig    `mapstructure:"log"    validate:"required"`
}

// ServerConfig contains the admin HTTP surface settings.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// PoolConfig contains the worker pool settings.
type PoolConfig struct {
	Workers int `mapstructure:"workers" validate:"required,gte=1"`
	// QueueCapacity bounds the task queue; 0 means unbounded.
	QueueCapacity int `mapstructure:"queue_capacity" validate:"gte=0"`
}

// LogConfig contains the log routing settings.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn warning critical"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	// File, when set, adds an append-mode file sink.
	File string `mapstructure:"file"`
	// Stdout toggles the console sink.
	Stdout bool `mapstructure:"stdout"`
	// Redact scrubs credential-shaped values from every record.
	Redact bool `mapstructure:"redact"`
	// Memory retains records in memory, served at /logs.
	Memory bool `mapstructure:"memory"`
}
