// Package cache provides the response cache contract and the key derivation
// shared by every gateway operation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a key-value store with per-entry TTL. Entries are immutable once
// written and overwritten wholesale; Get returns the stored bytes verbatim.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DeriveKey builds a stable, store-safe key from the endpoint name, the
// operation-relevant inputs and the user identity.
//
// The inputs map is serialized with sorted keys, so logically identical
// requests hash identically regardless of field order, and only the hash goes
// into the key, so no character needs escaping in any key-value store.
func DeriveKey(endpoint string, inputs map[string]string, user string) string {
	// json.Marshal sorts map keys, which is exactly the order-independence
	// the key needs.
	serialized, _ := json.Marshal(inputs)
	sum := sha256.Sum256([]byte(endpoint + ":" + string(serialized) + ":" + user))
	return "ai_" + endpoint + "_" + hex.EncodeToString(sum[:])
}
