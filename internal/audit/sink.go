package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lead_intake_backend/platform/logger"
	"lead_intake_backend/platform/metrics"
)

const writeTimeout = 5 * time.Second

// AsyncSink buffers records and writes them from a background goroutine.
// When the buffer is full the record is dropped and logged.
type AsyncSink struct {
	writer Writer
	log    *logger.Logger
	queue  chan Record

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncSink starts the writer goroutine. Call Close to drain it.
func NewAsyncSink(writer Writer, buffer int, log *logger.Logger) *AsyncSink {
	if buffer <= 0 {
		buffer = 1024
	}
	s := &AsyncSink{
		writer: writer,
		log:    log,
		queue:  make(chan Record, buffer),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues rec without blocking.
func (s *AsyncSink) Record(ctx context.Context, rec Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(ctx, rec, "sink closed")
		return
	}

	select {
	case s.queue <- rec:
	default:
		s.drop(ctx, rec, "buffer full")
	}
}

// Close stops accepting records and waits until the buffer is written or
// ctx expires.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for rec := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := s.writer.Insert(ctx, rec); err != nil {
			s.drop(ctx, rec, err.Error())
		}
		cancel()
	}
}

func (s *AsyncSink) drop(ctx context.Context, rec Record, reason string) {
	metrics.RecordAuditDropped()
	s.log.WithContext(ctx).Error("audit record dropped",
		slog.String("audit_id", rec.ID.String()),
		slog.String("action", string(rec.Action)),
		slog.String("source", rec.Source),
		slog.String("reason", reason),
	)
}
