package queue

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"bustracker/internal/core/model"
)

var pendingBucket = []byte("pending")

// Entry is one buffered fix plus local bookkeeping. Entries are
// append-only: the producer never touches them after Enqueue, and only
// the delivery agent updates attempt counts or removes them.
type Entry struct {
	ID          uint64            `json:"id"`
	Fix         model.LocationFix `json:"fix"`
	EnqueuedAt  time.Time         `json:"enqueuedAt"`
	Attempts    int               `json:"attempts"`
	LastAttempt time.Time         `json:"lastAttempt,omitempty"`
}

// Queue is a crash-durable store of fixes pending delivery. Ids are
// monotonically increasing, so an ordered scan yields enqueue order.
type Queue struct {
	db *bolt.DB
}

// Open opens (or creates) the queue file at path.
func Open(path string) (*Queue, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open queue store: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pendingBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize queue store: %v", err)
	}
	return &Queue{db: db}, nil
}

func (q *Queue) Close() error {
	return q.db.Close()
}

// Enqueue appends a fix and returns its assigned id. Missing lat/lng is
// deliberately not rejected here: the queue buffers opportunistically
// and lets the server be the validator.
func (q *Queue) Enqueue(fix model.LocationFix) (uint64, error) {
	var id uint64
	err := q.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry := Entry{
			ID:         seq,
			Fix:        fix,
			EnqueuedAt: time.Now(),
		}
		buf, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		id = seq
		return b.Put(itob(seq), buf)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue fix: %v", err)
	}
	return id, nil
}

// Pending returns all buffered entries, oldest first.
func (q *Queue) Pending() ([]Entry, error) {
	var entries []Entry
	err := q.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read pending entries: %v", err)
	}
	return entries, nil
}

// Remove deletes an entry by id. Removing an id that is already gone is
// a no-op; delivery retries may race with each other.
func (q *Queue) Remove(id uint64) error {
	return q.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete(itob(id))
	})
}

// MarkAttempt records one failed delivery attempt against an entry.
func (q *Queue) MarkAttempt(id uint64, at time.Time) error {
	return q.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		v := b.Get(itob(id))
		if v == nil {
			return nil
		}
		var entry Entry
		if err := json.Unmarshal(v, &entry); err != nil {
			return err
		}
		entry.Attempts++
		entry.LastAttempt = at
		buf, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(itob(id), buf)
	})
}

// Len returns the number of buffered entries.
func (q *Queue) Len() (int, error) {
	var n int
	err := q.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(pendingBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
