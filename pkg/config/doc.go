// Package config provides a type-safe, generic way to load application
// configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 to
// deliver a small API that:
//
//   - loads a `.env` file from the working directory once per process
//   - parses the environment into any Go struct using `env` field tags
//   - exposes MustLoad for configuration the application cannot start
//     without
//
// # Usage
//
//	type RedisConfig struct {
//		ConnectionURL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package config
