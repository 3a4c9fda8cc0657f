package config

import "time"

type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

// Enabled reports whether a redis address is configured. Without one the
// process falls back to an in-memory cache.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}
