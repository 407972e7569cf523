// Package cache provides the in-memory response cache used by the upstream
// gateway. Entries hold decoded JSON bodies keyed by a request fingerprint and
// expire passively after a fixed TTL; nothing sweeps the cache in the
// background.
package cache

import "encoding/json"

// Cache defines the interface for response-body caching.
type Cache interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, body json.RawMessage)
	Delete(key string)
	Len() int
	Clear()
}
