package writequeue

import "time"

// Config holds the configuration for the write queue manager.
type Config struct {
	MaxQueueSize         int           `env:"WRITEQUEUE_MAX_SIZE" envDefault:"1000"`
	BatchSize            int           `env:"WRITEQUEUE_BATCH_SIZE" envDefault:"10"`
	ProcessInterval      time.Duration `env:"WRITEQUEUE_PROCESS_INTERVAL" envDefault:"1s"`
	DispatchTimeout      time.Duration `env:"WRITEQUEUE_DISPATCH_TIMEOUT" envDefault:"30s"`
	DefaultMaxAttempts   int           `env:"WRITEQUEUE_MAX_ATTEMPTS" envDefault:"3"`
	HealthWindow         time.Duration `env:"WRITEQUEUE_HEALTH_WINDOW" envDefault:"60s"`
	DegradedThreshold    int           `env:"WRITEQUEUE_DEGRADED_THRESHOLD" envDefault:"3"`
	UnavailableThreshold int           `env:"WRITEQUEUE_UNAVAILABLE_THRESHOLD" envDefault:"10"`
	RetryCooldown        time.Duration `env:"WRITEQUEUE_RETRY_COOLDOWN" envDefault:"5s"`
	SnapshotKey          string        `env:"WRITEQUEUE_SNAPSHOT_KEY" envDefault:"writequeue:snapshot"`
	SnapshotTTL          time.Duration `env:"WRITEQUEUE_SNAPSHOT_TTL" envDefault:"24h"`
	AvgSampleSize        int           `env:"WRITEQUEUE_AVG_SAMPLE_SIZE" envDefault:"100"`
	StalePendingAge      time.Duration `env:"WRITEQUEUE_STALE_PENDING_AGE" envDefault:"60s"`
}

// defaultConfig returns the configuration used when no overrides are applied.
func defaultConfig() Config {
	return Config{
		MaxQueueSize:         1000,
		BatchSize:            10,
		ProcessInterval:      time.Second,
		DispatchTimeout:      30 * time.Second,
		DefaultMaxAttempts:   3,
		HealthWindow:         time.Minute,
		DegradedThreshold:    3,
		UnavailableThreshold: 10,
		RetryCooldown:        5 * time.Second,
		SnapshotKey:          "writequeue:snapshot",
		SnapshotTTL:          24 * time.Hour,
		AvgSampleSize:        100,
		StalePendingAge:      time.Minute,
	}
}
