package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// PlanKey derives the cache key for a computed plan from the full set of
// inputs that determine it: endpoints, crossing table, datasets and
// constraint parameters. Any serializable snapshot of those inputs works;
// identical inputs always map to the same key.
func PlanKey(inputs any) string {
	return hashKey("plan", inputs)
}

// RatesKey is the cache key for the exchange-rate feed snapshot.
func RatesKey() string {
	return "rates:ecb-daily"
}
