package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
	"github.com/placementcell/recruit-portal/internal/pkg/metrics"
)

const (
	defaultWorkers = 2
	defaultBuffer  = 512
	writeTimeout   = 5 * time.Second
)

// NamedWriter labels an AuditWriter for logs and metrics.
type NamedWriter struct {
	Name   string
	Writer ports.AuditWriter
}

// Dispatcher fans audit events out to a fixed set of writers from a small
// worker pool. Log never blocks: when the buffer is full the event is
// dropped and counted.
type Dispatcher struct {
	events  chan domain.AuditEvent
	writers []NamedWriter
	workers int
	log     zerolog.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Non-positive workers or buffer select
// the defaults.
func NewDispatcher(workers, buffer int, log zerolog.Logger, writers ...NamedWriter) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Dispatcher{
		events:  make(chan domain.AuditEvent, buffer),
		writers: writers,
		workers: workers,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the workers. When ctx is cancelled they drain what is
// already buffered and exit; Wait blocks until then.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Log implements ports.AuditSink.
func (d *Dispatcher) Log(kind domain.AuditKind, message, email, ip string) {
	event := domain.AuditEvent{
		Kind:      kind,
		Message:   message,
		UserEmail: email,
		IP:        ip,
		Timestamp: d.now(),
	}
	select {
	case d.events <- event:
		metrics.AuditQueueDepth.Set(float64(len(d.events)))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().Str("event_type", string(kind)).Msg("audit buffer full, event dropped")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id)
			return
		case event := <-d.events:
			d.deliver(id, event)
		}
	}
}

func (d *Dispatcher) drain(id int) {
	for {
		select {
		case event := <-d.events:
			d.deliver(id, event)
		default:
			return
		}
	}
}

// deliver writes event to every writer. Writes are detached from the
// request that produced the event.
func (d *Dispatcher) deliver(id int, event domain.AuditEvent) {
	metrics.AuditQueueDepth.Set(float64(len(d.events)))
	for _, w := range d.writers {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := w.Writer.Write(ctx, event)
		cancel()
		if err != nil {
			metrics.AuditWriteErrorsTotal.WithLabelValues(w.Name).Inc()
			d.log.Error().Err(err).
				Str("writer", w.Name).
				Str("event_type", string(event.Kind)).
				Int("worker_id", id).
				Msg("audit write failed")
		}
	}
}
