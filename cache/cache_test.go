package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsi-dev/lsi/hosts"
)

func TestRoundTrip(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"), 1)

	entries := []hosts.Entry{
		{Name: "web-1", InstanceID: "i-1", PublicIP: "52.0.0.1",
			SecurityGroups: []string{"web"}, Tags: map[string]string{"env": "prod"}},
		{Name: "db-1", InstanceID: "i-2"},
	}
	require.NoError(t, c.Write(entries))

	back, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, entries, back)
}

func TestValid_FreshFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"), 1)
	require.NoError(t, c.Write(nil))
	assert.True(t, c.Valid(time.Now()))
}

func TestValid_MissingFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"), 1)
	assert.False(t, c.Valid(time.Now()))
}

func TestValid_StaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := New(path, 1)
	require.NoError(t, c.Write(nil))

	// Timestamped two days ago with a one-day window: invalid.
	twoDaysAgo := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(path, twoDaysAgo, twoDaysAgo))
	assert.False(t, c.Valid(time.Now()))
}

func TestRead_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	c := New(path, 1)
	_, err := c.Read()
	assert.Error(t, err)
}
