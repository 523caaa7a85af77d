package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftdesk/servicekit/pkg/config"
)

type queueTestConfig struct {
	MaxSize  int           `env:"TEST_WRITEQUEUE_MAX_SIZE" envDefault:"1000"`
	Interval time.Duration `env:"TEST_WRITEQUEUE_INTERVAL" envDefault:"1s"`
	Key      string        `env:"TEST_WRITEQUEUE_KEY,required"`
}

func TestLoad(t *testing.T) {
	t.Run("parses environment into struct", func(t *testing.T) {
		t.Setenv("TEST_WRITEQUEUE_MAX_SIZE", "250")
		t.Setenv("TEST_WRITEQUEUE_INTERVAL", "5s")
		t.Setenv("TEST_WRITEQUEUE_KEY", "writequeue:test")

		var cfg queueTestConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 250, cfg.MaxSize)
		assert.Equal(t, 5*time.Second, cfg.Interval)
		assert.Equal(t, "writequeue:test", cfg.Key)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("TEST_WRITEQUEUE_KEY", "writequeue:test")

		var cfg queueTestConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 1000, cfg.MaxSize)
		assert.Equal(t, time.Second, cfg.Interval)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg queueTestConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[queueTestConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg queueTestConfig
			config.MustLoad(&cfg)
		})
	})
}
