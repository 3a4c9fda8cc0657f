package config

import (
	"errors"
	"time"
)

// minJWTSecretLen is the key size of HS256.
const minJWTSecretLen = 32

type Auth struct {
	JWTSecret string        `env:"AUTH_JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"12h"`
	Issuer    string        `env:"AUTH_ISSUER" envDefault:"lfs"`
}

func (a *Auth) Validate() error {
	if len(a.JWTSecret) < minJWTSecretLen {
		return errors.New("AUTH_JWT_SECRET must be at least 32 bytes")
	}
	if a.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	return nil
}
