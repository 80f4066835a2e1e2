// Package config loads typed configuration structs from environment
// variables. A .env file in the working directory is read once, before
// the first parse, so local development does not need exported vars.
package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load fills v from the environment according to its `env` field tags.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is the normal production case.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsing, err)
	}
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any]() T {
	var v T
	if err := Load(&v); err != nil {
		panic(err)
	}
	return v
}
