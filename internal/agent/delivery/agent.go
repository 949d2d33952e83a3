package delivery

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"bustracker/internal/agent/queue"
	"bustracker/internal/core/model"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 5

	backoffBase = 2 * time.Second
	backoffMax  = time.Minute
)

// Result summarizes one flush.
type Result struct {
	Attempted int
	Succeeded int
	Dropped   int
}

func (r *Result) add(o Result) {
	r.Attempted += o.Attempted
	r.Succeeded += o.Succeeded
	r.Dropped += o.Dropped
}

// Agent drains the durable queue against the upsert endpoint. Flush is
// safe to call concurrently with itself: overlapping calls coalesce
// into at most one follow-up drain instead of running a second
// overlapping one.
type Agent struct {
	queue       *queue.Queue
	sender      Sender
	workers     int
	maxAttempts int
	now         func() time.Time

	mu       sync.Mutex
	inFlight bool
	pending  bool
}

func NewAgent(q *queue.Queue, sender Sender, opts ...AgentOption) *Agent {
	a := &Agent{
		queue:       q,
		sender:      sender,
		workers:     defaultWorkers,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type AgentOption func(*Agent)

func WithWorkers(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithMaxAttempts(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// Flush attempts delivery of every pending entry. If a flush is already
// running, the call records a follow-up request and returns immediately
// with an empty Result; the running flush drains once more before it
// finishes.
func (a *Agent) Flush(ctx context.Context) (Result, error) {
	a.mu.Lock()
	if a.inFlight {
		a.pending = true
		a.mu.Unlock()
		return Result{}, nil
	}
	a.inFlight = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	var total Result
	for {
		res, err := a.drain(ctx)
		total.add(res)
		if err != nil {
			return total, err
		}

		a.mu.Lock()
		again := a.pending
		a.pending = false
		a.mu.Unlock()
		if !again {
			break
		}
	}
	return total, nil
}

// drain runs one pass over the pending entries with a bounded worker
// pool. Entries still inside their backoff window are skipped.
func (a *Agent) drain(ctx context.Context) (Result, error) {
	entries, err := a.queue.Pending()
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{}, nil
	}

	now := a.now()
	due := entries[:0]
	for _, entry := range entries {
		if entry.Attempts > 0 && now.Sub(entry.LastAttempt) < backoffFor(entry.Attempts) {
			continue
		}
		due = append(due, entry)
	}
	if len(due) == 0 {
		return Result{}, nil
	}

	var (
		mu  sync.Mutex
		res Result
	)
	work := make(chan queue.Entry)
	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				delivered, dropped := a.deliver(ctx, entry)
				mu.Lock()
				res.Attempted++
				if delivered {
					res.Succeeded++
				}
				if dropped {
					res.Dropped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, entry := range due {
		select {
		case work <- entry:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return res, ctx.Err()
		}
	}
	close(work)
	wg.Wait()
	return res, nil
}

func (a *Agent) deliver(ctx context.Context, entry queue.Entry) (delivered, dropped bool) {
	err := a.sender.Send(ctx, entry.Fix)
	if err == nil {
		if err := a.queue.Remove(entry.ID); err != nil {
			log.Printf("failed to remove delivered entry %d: %v", entry.ID, err)
		}
		return true, false
	}

	// A fix the server refuses will never succeed; after maxAttempts
	// it is dropped so one bad capture cannot wedge the queue.
	if errors.Is(err, model.ErrInvalidInput) && entry.Attempts+1 >= a.maxAttempts {
		log.Printf("dropping entry %d for bus %s after %d rejected attempts: %v", entry.ID, entry.Fix.BusID, entry.Attempts+1, err)
		if err := a.queue.Remove(entry.ID); err != nil {
			log.Printf("failed to drop entry %d: %v", entry.ID, err)
		}
		return false, true
	}

	if err := a.queue.MarkAttempt(entry.ID, a.now()); err != nil {
		log.Printf("failed to record attempt for entry %d: %v", entry.ID, err)
	}
	return false, false
}

func backoffFor(attempts int) time.Duration {
	d := backoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= backoffMax {
			return backoffMax
		}
	}
	return d
}
