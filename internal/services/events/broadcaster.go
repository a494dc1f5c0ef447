package events

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/models"
)

type queuedEvent struct {
	subject string
	payload interface{}
}

// Broadcaster fans events out to subscribers without ever blocking the
// pipeline that produced them. Events pass through a bounded in-memory queue
// drained by a single goroutine; when the queue is full or the transport is
// down the event is dropped and counted, never retried. Broadcast state is
// not persistence: the database row is always written before the event is
// enqueued, so a dropped event loses a notification, not data.
type Broadcaster struct {
	publisher models.MessagePublisher
	queue     chan queuedEvent

	dropped   atomic.Int64
	published atomic.Int64

	done chan struct{}
}

func NewBroadcaster(cfg *config.Config, publisher models.MessagePublisher) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		queue:     make(chan queuedEvent, cfg.EventQueueSize),
		done:      make(chan struct{}),
	}
}

// Run drains the queue until the context is cancelled. Call in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			b.drain()
			return
		case event := <-b.queue:
			b.publish(event)
		}
	}
}

// drain flushes whatever is still queued at shutdown
func (b *Broadcaster) drain() {
	for {
		select {
		case event := <-b.queue:
			b.publish(event)
		default:
			return
		}
	}
}

func (b *Broadcaster) publish(event queuedEvent) {
	if err := b.publisher.Publish(event.subject, event.payload); err != nil {
		b.dropped.Add(1)
		log.Warn().
			Err(err).
			Str("subject", event.subject).
			Msg("Failed to publish event, dropping")
		return
	}
	b.published.Add(1)
}

// Enqueue submits an event for broadcast. Never blocks: when the queue is
// full the event is dropped and the drop counter incremented.
func (b *Broadcaster) Enqueue(subject string, payload interface{}) {
	select {
	case b.queue <- queuedEvent{subject: subject, payload: payload}:
	default:
		b.dropped.Add(1)
		log.Warn().
			Str("subject", subject).
			Msg("Event queue full, dropping event")
	}
}

// AlertCreated broadcasts a freshly persisted alert
func (b *Broadcaster) AlertCreated(alert *models.Alert) {
	b.Enqueue(models.ChannelAlerts, models.NewAlertEventPayload(models.EventAlertCreated, alert))
}

// AlertChanged broadcasts an alert whose status transitioned
func (b *Broadcaster) AlertChanged(alert *models.Alert) {
	b.Enqueue(models.ChannelAlerts, models.NewAlertEventPayload(models.EventAlertChanged, alert))
}

// OccupancyChanged broadcasts a newly ingested occupancy snapshot
func (b *Broadcaster) OccupancyChanged(snapshot *models.OccupancySnapshot) {
	b.Enqueue(models.ChannelOccupancy, models.NewOccupancyEventPayload(snapshot))
}

// Stats reports published/dropped counters for the system stats endpoint
func (b *Broadcaster) Stats() (published, dropped int64) {
	return b.published.Load(), b.dropped.Load()
}

// Done is closed once Run has exited and the queue is flushed
func (b *Broadcaster) Done() <-chan struct{} {
	return b.done
}
