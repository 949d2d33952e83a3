package delivery

import (
	"context"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Reason names the event that asked for a flush. Triggers are
// fire-and-forget: callers never block on the drain.
type Reason string

const (
	// ReasonSent fires right after a successful direct send, to drain
	// any backlog opportunistically.
	ReasonSent Reason = "sent"
	// ReasonOnline fires when connectivity comes back.
	ReasonOnline Reason = "online"
	// ReasonPeriodic fires on the background timer.
	ReasonPeriodic Reason = "periodic"
	// ReasonManual fires on an explicit "sync now" request.
	ReasonManual Reason = "manual"
	// ReasonPush fires on a server-published sync request.
	ReasonPush Reason = "push"
)

// SyncSubject is the broadcast subject the server publishes on when it
// wants agents to drain their queues.
const SyncSubject = "bustracker.sync.request"

// Scheduler funnels every trigger source into the agent's single flush
// entry point.
type Scheduler struct {
	agent    *Agent
	interval time.Duration
	triggers chan Reason

	// OnResult, when set, observes every flush outcome. Must be set
	// before Run starts.
	OnResult func(reason Reason, res Result, err error, elapsed time.Duration)
}

func NewScheduler(agent *Agent, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		agent:    agent,
		interval: interval,
		// A single slot is enough: the agent coalesces overlapping
		// flushes, so extra triggers carry no extra information.
		triggers: make(chan Reason, 1),
	}
}

// Trigger requests a flush without blocking the caller.
func (s *Scheduler) Trigger(reason Reason) {
	select {
	case s.triggers <- reason:
	default:
	}
}

// Run drives the periodic timer and the trigger channel until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.flush(ctx, ReasonPeriodic)
		case reason := <-s.triggers:
			s.flush(ctx, reason)
		}
	}
}

func (s *Scheduler) flush(ctx context.Context, reason Reason) {
	start := time.Now()
	res, err := s.agent.Flush(ctx)
	if s.OnResult != nil {
		s.OnResult(reason, res, err, time.Since(start))
	}
	if err != nil {
		log.Printf("sync (%s) failed: %v", reason, err)
		return
	}
	if res.Attempted > 0 {
		log.Printf("sync (%s): attempted=%d succeeded=%d dropped=%d", reason, res.Attempted, res.Succeeded, res.Dropped)
	}
}

// SubscribeSyncRequests wires server-published sync requests into the
// scheduler as push triggers.
func SubscribeSyncRequests(nc *nats.Conn, s *Scheduler) (*nats.Subscription, error) {
	return nc.Subscribe(SyncSubject, func(_ *nats.Msg) {
		s.Trigger(ReasonPush)
	})
}
