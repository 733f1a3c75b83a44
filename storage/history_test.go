package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestRecordAndList(t *testing.T) {
	h := openTestHistory(t)

	require.NoError(t, h.Record(RunRecord{
		Time:      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Command:   "uptime",
		Hosts:     []string{"web-1", "web-2"},
		ExitCodes: []int{0, 0},
	}))
	require.NoError(t, h.Record(RunRecord{
		Time:      time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
		Command:   "df -h",
		Parallel:  true,
		Hosts:     []string{"db-1"},
		ExitCodes: []int{1},
	}))

	records, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first.
	assert.Equal(t, "df -h", records[0].Command)
	assert.Equal(t, "uptime", records[1].Command)
	assert.Equal(t, uint64(2), records[0].Seq)
}

func TestList_Limit(t *testing.T) {
	h := openTestHistory(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Record(RunRecord{Command: "true", Time: time.Now()}))
	}
	records, err := h.List(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFailed(t *testing.T) {
	rec := RunRecord{
		Hosts:     []string{"a", "b", "c"},
		ExitCodes: []int{0, 2, 0},
	}
	assert.Equal(t, []string{"b"}, rec.Failed())
}

func TestList_Empty(t *testing.T) {
	h := openTestHistory(t)
	records, err := h.List(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
