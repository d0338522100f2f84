package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// CacheFreshness is the window during which a cache row is considered fresh.
// Expired rows are logically stale but never deleted by this subsystem;
// re-generation supersedes them with a new row.
const CacheFreshness = 24 * time.Hour

// ContentHash derives the generation cache key from the request triple.
// The description is lowercased and trimmed first, so " Foo " and "foo"
// hash identically. The hash is SHA-256 over a canonical JSON encoding.
func ContentHash(description, mode string, deepThinking bool) string {
	canonical, _ := json.Marshal(struct {
		Description  string `json:"description"`
		Mode         string `json:"mode"`
		DeepThinking bool   `json:"deep_thinking"`
	}{
		Description:  strings.ToLower(strings.TrimSpace(description)),
		Mode:         mode,
		DeepThinking: deepThinking,
	})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// GenerationCache is a time-boxed cache row for generated name lists.
// Rows are created on miss after a successful generation and never mutated.
type GenerationCache struct {
	ID          int64     `json:"id"`
	ContentHash string    `json:"content_hash"`
	Names       []string  `json:"names"`
	CachedAt    time.Time `json:"cached_at"`
}

// Fresh reports whether the row is within the freshness window as of now.
func (c *GenerationCache) Fresh(now time.Time) bool {
	return now.Sub(c.CachedAt) < CacheFreshness
}

// DomainCheckCache is a time-boxed cache row for one domain lookup,
// keyed by the exact domain string.
type DomainCheckCache struct {
	ID       int64                      `json:"id"`
	Domain   string                     `json:"domain"`
	Results  map[string]TLDAvailability `json:"results"`
	CachedAt time.Time                  `json:"cached_at"`
}

// Fresh reports whether the row is within the freshness window as of now.
func (c *DomainCheckCache) Fresh(now time.Time) bool {
	return now.Sub(c.CachedAt) < CacheFreshness
}
