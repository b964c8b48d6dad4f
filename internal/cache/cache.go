package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque model responses by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from the parts that determine a response.
// Parts are NUL-separated so ("ab","c") and ("a","bc") never collide.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return "concordia:v1:" + hex.EncodeToString(h.Sum(nil))
}
