// Package cache persists the fetched host inventory as a flat JSON array
// on disk, so repeated queries don't hit the cloud API.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lsi-dev/lsi/hosts"
)

// Cache is a JSON snapshot of the host inventory at a fixed path,
// considered valid only for a bounded number of days after it was
// written.
type Cache struct {
	path   string
	maxAge time.Duration
}

// New creates a cache at path that stays valid for validDays days.
func New(path string, validDays int) *Cache {
	return &Cache{
		path:   path,
		maxAge: time.Duration(validDays) * 24 * time.Hour,
	}
}

// Valid reports whether the cache file exists and was modified within
// the validity window of now.
func (c *Cache) Valid(now time.Time) bool {
	info, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime()) <= c.maxAge
}

// Read deserializes the cached entry snapshots.
func (c *Cache) Read() ([]hosts.Entry, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", c.path, err)
	}
	var entries []hosts.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cache %s: %w", c.path, err)
	}
	return entries, nil
}

// Write serializes the full entry collection, replacing any previous
// snapshot.
func (c *Cache) Write(entries []hosts.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", c.path, err)
	}
	return nil
}
