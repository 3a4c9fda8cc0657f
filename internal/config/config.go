package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
)

// Validator is implemented by configuration sections that check their values
// beyond what env tags express.
type Validator interface {
	Validate() error
}

// New reads configuration from environment variables into a struct of type T
// and validates every section implementing Validator. Returns the populated
// configuration struct or an error.
func New[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := validate(reflect.ValueOf(&cfg).Elem()); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// validate walks v depth first and joins the errors of all sections.
func validate(v reflect.Value) error {
	var errs []error

	if v.CanAddr() {
		if section, ok := v.Addr().Interface().(Validator); ok {
			errs = append(errs, section.Validate())
		}
	}

	if v.Kind() == reflect.Struct {
		for i := range v.NumField() {
			if f := v.Field(i); f.CanInterface() {
				errs = append(errs, validate(f))
			}
		}
	}

	return errors.Join(errs...)
}
