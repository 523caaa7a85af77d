package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load parses environment variables into the provided configuration struct
// based on its `env` field tags. A `.env` file in the working directory is
// loaded once per process before the first parse; its absence is fine.
//
// Unlike a cached loader, every call re-reads the environment, so each
// component constructs its own configuration explicitly and tests can vary
// the environment between loads.
//
// Example:
//
//	type QueueConfig struct {
//		MaxSize  int           `env:"WRITEQUEUE_MAX_SIZE" envDefault:"1000"`
//		Interval time.Duration `env:"WRITEQUEUE_PROCESS_INTERVAL" envDefault:"1s"`
//	}
//
//	var cfg QueueConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics when loading fails. Intended for
// configuration the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
