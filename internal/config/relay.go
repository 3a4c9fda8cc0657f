package config

import (
	"errors"
	"time"
)

type Relay struct {
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
	// MaxAttempts is how often a message is produced before it is given up.
	MaxAttempts     int32         `env:"RELAY_MAX_ATTEMPTS" envDefault:"10"`
	ShutdownTimeout time.Duration `env:"RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	// MetricsAddr is where the standalone relay serves /metrics, empty disables it.
	MetricsAddr string `env:"RELAY_METRICS_ADDR" envDefault:":9100"`
}

func (r *Relay) Validate() error {
	if r.BatchSize == 0 {
		return errors.New("RELAY_BATCH_SIZE must be positive")
	}
	if r.Interval <= 0 {
		return errors.New("RELAY_INTERVAL must be positive")
	}
	return nil
}
