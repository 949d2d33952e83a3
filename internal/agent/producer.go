package agent

import (
	"context"
	"errors"
	"log"

	"bustracker/internal/agent/delivery"
	"bustracker/internal/agent/queue"
	"bustracker/internal/core/model"
)

// Producer accepts captured fixes and decides between direct send and
// durable buffering. The capturing caller never sees a transient
// failure: a fix that cannot reach the server is queued and reported
// as accepted.
type Producer struct {
	queue     *queue.Queue
	sender    delivery.Sender
	scheduler *delivery.Scheduler

	// OnEnqueue, when set, observes every buffered fix.
	OnEnqueue func()
}

func NewProducer(q *queue.Queue, sender delivery.Sender, scheduler *delivery.Scheduler) *Producer {
	return &Producer{queue: q, sender: sender, scheduler: scheduler}
}

// Submit tries a direct send first. On success it opportunistically
// drains any backlog; on a transient failure it buffers the fix and
// reports it queued. A server rejection is surfaced as-is: the payload
// itself is bad and buffering cannot fix it.
func (p *Producer) Submit(ctx context.Context, fix model.LocationFix) (queued bool, err error) {
	err = p.sender.Send(ctx, fix)
	if err == nil {
		p.scheduler.Trigger(delivery.ReasonSent)
		return false, nil
	}
	if errors.Is(err, model.ErrInvalidInput) {
		return false, err
	}

	if _, qerr := p.queue.Enqueue(fix); qerr != nil {
		return false, qerr
	}
	if p.OnEnqueue != nil {
		p.OnEnqueue()
	}
	log.Printf("buffered fix for bus %s (send failed: %v)", fix.BusID, err)
	return true, nil
}

// SyncNow requests an explicit drain without blocking.
func (p *Producer) SyncNow() {
	p.scheduler.Trigger(delivery.ReasonManual)
}
