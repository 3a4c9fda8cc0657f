package config

import (
	"errors"
	"time"
)

// HTTP configures the shop and management API server.
type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`
	// ValidateRequests enables OpenAPI request validation.
	ValidateRequests bool     `env:"HTTP_VALIDATE_REQUESTS" envDefault:"true"`
	AllowedOrigins   []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func (c HTTP) Validate() error {
	if c.Port == 0 || c.Port > 65535 {
		return errors.New("HTTP_PORT must be between 1 and 65535")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	return nil
}
