package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lead_intake_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	mu      sync.Mutex
	records []Record
	block   chan struct{}
	err     error
}

func (w *memoryWriter) Insert(ctx context.Context, rec Record) error {
	if w.block != nil {
		<-w.block
	}
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, rec)
	return nil
}

func (w *memoryWriter) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

func TestAsyncSinkWritesEveryRecordBeforeClose(t *testing.T) {
	writer := &memoryWriter{}
	sink := NewAsyncSink(writer, 16, logger.Discard())

	for i := 0; i < 10; i++ {
		sink.Record(context.Background(), NewRecord(ActionLeadCreated, "meta_webhook"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
	assert.Equal(t, 10, writer.len())
}

func TestAsyncSinkDropsWhenFullWithoutBlocking(t *testing.T) {
	writer := &memoryWriter{block: make(chan struct{})}
	sink := NewAsyncSink(writer, 1, logger.Discard())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			sink.Record(context.Background(), NewRecord(ActionLeadCreated, "direct_api"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	close(writer.block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
	assert.LessOrEqual(t, writer.len(), 2)
}

func TestAsyncSinkSurvivesWriteFailures(t *testing.T) {
	writer := &memoryWriter{err: errors.New("db down")}
	sink := NewAsyncSink(writer, 4, logger.Discard())

	sink.Record(context.Background(), NewRecord(ActionLeadIntakeFailed, "internal"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
	assert.Equal(t, 0, writer.len())
}

func TestAsyncSinkIgnoresRecordsAfterClose(t *testing.T) {
	writer := &memoryWriter{}
	sink := NewAsyncSink(writer, 4, logger.Discard())
	require.NoError(t, sink.Close(context.Background()))

	assert.NotPanics(t, func() {
		sink.Record(context.Background(), NewRecord(ActionLeadCreated, "internal"))
	})
}

func TestInsertQueryIsIdempotent(t *testing.T) {
	assert.Contains(t, insertRecordQuery, "ON CONFLICT (id) DO NOTHING")
}
