// Package cache provides the raw log output cache used by the pipeline.
//
// Running the log command against a large repository is the slowest part of
// an invocation, so the pipeline caches the raw command output keyed by the
// full command string. A [FileCache] backs CLI usage; [NullCache] disables
// caching for tests and one-shot runs.
package cache

import (
	"context"
	"time"
)

// TTLLog is how long raw log command output stays valid. Histories move
// quickly, so the window is short; --refresh bypasses the cache entirely.
const TTLLog = 10 * time.Minute

// Cache stores opaque byte values under string keys with optional
// expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer generates cache keys for the pipeline's cacheable artifacts.
type Keyer interface {
	// LogKey generates a key for raw log command output. The key must
	// change whenever the command (and therefore the output) would.
	LogKey(command string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LogKey generates a key for raw log command output.
func (DefaultKeyer) LogKey(command string) string {
	return hashKey("log", command)
}
