package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilTarget is returned when Load is called with a nil pointer.
var ErrNilTarget = errors.New("config target must be a non-nil pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (a T value)
)

// Load populates cfg from the environment. The first successful load of a
// type is cached and copied into cfg on every later call.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilTarget
	}

	// .env is optional; a missing file is not an error
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeOf(cfg).Elem()
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return fmt.Errorf("failed to load %s config: %w", key.String(), err)
	}

	actual, _ := cache.LoadOrStore(key, loaded)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
