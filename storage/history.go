// Package storage keeps a local journal of batch command executions so
// past runs and their per-host exit codes can be reviewed.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketRuns = []byte("runs")

// RunRecord is one recorded batch execution.
type RunRecord struct {
	Seq       uint64    `json:"seq"`
	Time      time.Time `json:"time"`
	Command   string    `json:"command"`
	Parallel  bool      `json:"parallel"`
	Hosts     []string  `json:"hosts"`
	ExitCodes []int     `json:"exit_codes"`
}

// Failed returns the hosts whose command exited non-zero.
func (r *RunRecord) Failed() []string {
	var failed []string
	for i, code := range r.ExitCodes {
		if code != 0 && i < len(r.Hosts) {
			failed = append(failed, r.Hosts[i])
		}
	}
	return failed
}

// History is an append-only bbolt journal of run records.
type History struct {
	db *bbolt.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// Record appends a run record, assigning it the next sequence number.
func (h *History) Record(rec RunRecord) error {
	return h.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRuns)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		rec.Seq = seq
		value, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return bucket.Put(seqKey(seq), value)
	})
}

// List returns up to limit records, most recent first. A non-positive
// limit returns everything.
func (h *History) List(limit int) ([]RunRecord, error) {
	var records []RunRecord
	err := h.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketRuns).Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt history record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
