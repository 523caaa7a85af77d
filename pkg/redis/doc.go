// Package redis provides helpers for connecting to a Redis server and the
// key-value snapshot storage backing the write queue's crash recovery.
//
// The package wraps the go-redis client and adds:
//
//   - a Connect helper that retries the connection using the supplied
//     configuration
//   - SnapshotStorage, a thin get/set-with-TTL wrapper satisfying the
//     writequeue.SnapshotStore interface
//   - a health-check helper for liveness and readiness probes
//
// Configuration is described by the Config struct whose fields are populated
// from environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0", RetryAttempts: 3,
//	    RetryInterval: 5 * time.Second, ConnectTimeout: 30 * time.Second}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	snapshots := redis.NewSnapshotStorage(client)
//	mgr, err := writequeue.New(exec, writequeue.WithSnapshotStore(snapshots))
//
// # Errors
//
// The package defines sentinel errors (e.g. ErrRedisNotReady) that wrap the
// underlying go-redis errors using errors.Join, so they compare cleanly with
// errors.Is.
package redis
