package queue

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bustracker/internal/core/model"
)

func openTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func TestEnqueueAssignsIncreasingIDs(t *testing.T) {
	q := openTestQueue(t)

	var last uint64
	for i := 0; i < 5; i++ {
		id, err := q.Enqueue(model.LocationFix{BusID: "KSRTC_101", Lat: 9.93, Lng: 76.26})
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if id <= last {
			t.Errorf("expected increasing ids, got %d after %d", id, last)
		}
		last = id
	}
}

func TestPendingReturnsEnqueueOrder(t *testing.T) {
	q := openTestQueue(t)

	buses := []string{"KSRTC_1", "KSRTC_2", "KSRTC_3"}
	for _, bus := range buses {
		if _, err := q.Enqueue(model.LocationFix{BusID: bus, Lat: 10, Lng: 76}); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	entries, err := q.Pending()
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(entries) != len(buses) {
		t.Fatalf("expected %d entries, got %d", len(buses), len(entries))
	}
	for i, entry := range entries {
		if entry.Fix.BusID != buses[i] {
			t.Errorf("entry %d: expected bus %s, got %s", i, buses[i], entry.Fix.BusID)
		}
	}
}

func TestEnqueueAcceptsIncompleteFix(t *testing.T) {
	q := openTestQueue(t)

	// The queue buffers whatever the producer captured; validation
	// happens server-side on delivery.
	if _, err := q.Enqueue(model.LocationFix{BusID: "KSRTC_9"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	n, err := q.Len()
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	q := openTestQueue(t)

	id, err := q.Enqueue(model.LocationFix{BusID: "KSRTC_5", Lat: 9, Lng: 76})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := q.Remove(id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := q.Remove(id); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}
	if err := q.Remove(9999); err != nil {
		t.Errorf("Remove(unknown) error = %v, want nil", err)
	}

	n, _ := q.Len()
	if n != 0 {
		t.Errorf("expected empty queue, got %d entries", n)
	}
}

func TestMarkAttemptIncrementsCount(t *testing.T) {
	q := openTestQueue(t)

	id, err := q.Enqueue(model.LocationFix{BusID: "KSRTC_7", Lat: 9, Lng: 76})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := q.MarkAttempt(id, now); err != nil {
			t.Fatalf("MarkAttempt() error = %v", err)
		}
	}
	// Unknown ids are ignored.
	if err := q.MarkAttempt(12345, now); err != nil {
		t.Fatalf("MarkAttempt(unknown) error = %v", err)
	}

	entries, err := q.Pending()
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Attempts != 3 {
		t.Errorf("expected 1 entry with 3 attempts, got %+v", entries)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")

	q, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := q.Enqueue(model.LocationFix{BusID: "KSRTC_42", Lat: 9.5, Lng: 76.5}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	q2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer q2.Close()

	entries, err := q2.Pending()
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Fix.BusID != "KSRTC_42" {
		t.Errorf("expected the buffered fix to survive reopen, got %+v", entries)
	}
}

func TestConcurrentEnqueueLosesNothing(t *testing.T) {
	q := openTestQueue(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Enqueue(model.LocationFix{BusID: "KSRTC_77", Lat: 9, Lng: 76}); err != nil {
				t.Errorf("Enqueue() error = %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := q.Pending()
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(entries) != n {
		t.Fatalf("expected %d entries, got %d", n, len(entries))
	}
	seen := make(map[uint64]bool)
	for _, entry := range entries {
		if seen[entry.ID] {
			t.Errorf("duplicate id %d", entry.ID)
		}
		seen[entry.ID] = true
	}
}
