package sshcmd

import (
	"fmt"
	"os/exec"
	"sync"
)

// PathCache memoizes resolved binary locations for the process lifetime.
type PathCache struct {
	mu     sync.Mutex
	paths  map[string]string
	lookup func(string) (string, error)
}

// NewPathCache creates a cache backed by exec.LookPath.
func NewPathCache() *PathCache {
	return &PathCache{
		paths:  make(map[string]string),
		lookup: exec.LookPath,
	}
}

// Lookup resolves a binary name to its full path, caching the result.
func (c *PathCache) Lookup(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if path, ok := c.paths[name]; ok {
		return path, nil
	}
	path, err := c.lookup(name)
	if err != nil {
		return "", fmt.Errorf("lookup of path to command %q failed: %w", name, err)
	}
	c.paths[name] = path
	return path, nil
}
