package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. The daily
// bundle cache sits behind it so the backend (memory or Redis) is a config
// choice, not a code path.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
