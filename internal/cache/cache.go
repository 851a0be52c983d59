package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cache stores resolved display strings. Owned by the resolver that uses it;
// invalidation is always explicit.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
	Delete(key string)
	DeletePrefix(prefix string) int
	Clear()
	Stats() Stats
}

// Stats reports cache effectiveness
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// LocalePrefix is the key prefix shared by every entry of one locale
func LocalePrefix(locale string) string {
	return "termgov:v1:" + locale + ":"
}

// Key builds a cache key for resolving key through chain in locale
func Key(locale string, chain []string, key string) string {
	hash := sha256.Sum256([]byte(strings.Join(chain, "\x00") + "\x01" + key))
	return LocalePrefix(locale) + hex.EncodeToString(hash[:16])
}
