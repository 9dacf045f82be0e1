package webhook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lead_intake_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket, key, contentType string
	data                     []byte
}

type fakeStorage struct {
	calls   chan putCall
	err     error
	release chan struct{}
}

func (s *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }
func (s *fakeStorage) ValidateContentType(string) error                 { return nil }
func (s *fakeStorage) ValidateFileSize(int64) error                     { return nil }

func (s *fakeStorage) PutObject(_ context.Context, bucket, key, contentType string, data []byte) error {
	s.calls <- putCall{bucket: bucket, key: key, contentType: contentType, data: data}
	if s.release != nil {
		<-s.release
	}
	return s.err
}

func TestStorageArchiverUploadsCopyOfBody(t *testing.T) {
	store := &fakeStorage{calls: make(chan putCall, 1)}
	a := NewStorageArchiver(store, "webhook-payloads", logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	body := []byte(`{"phone":"+31612000001"}`)
	a.Archive(ctx, "meta_webhook", "accepted", "", body)
	cancel()
	body[0] = 'X'

	select {
	case call := <-store.calls:
		assert.Equal(t, "webhook-payloads", call.bucket)
		assert.True(t, strings.HasPrefix(call.key, "meta_webhook/"))
		assert.Contains(t, call.key, "/accepted-")
		assert.Equal(t, "application/json", call.contentType)
		assert.Equal(t, `{"phone":"+31612000001"}`, string(call.data))
	case <-time.After(2 * time.Second):
		t.Fatal("archive upload not attempted")
	}
}

func TestStorageArchiverSkipsEmptyBodyAndSurvivesErrors(t *testing.T) {
	store := &fakeStorage{calls: make(chan putCall, 1), err: errors.New("bucket gone")}
	a := NewStorageArchiver(store, "b", logger.Discard())

	a.Archive(context.Background(), "generic_webhook", "invalid", "application/json", nil)
	a.Archive(context.Background(), "generic_webhook", "invalid", "application/json", []byte("{}"))

	select {
	case call := <-store.calls:
		require.Equal(t, "{}", string(call.data))
	case <-time.After(2 * time.Second):
		t.Fatal("archive upload not attempted")
	}
	assert.Empty(t, store.calls)
}

func TestStorageArchiverWaitDrainsInFlightUploads(t *testing.T) {
	store := &fakeStorage{calls: make(chan putCall, 1), release: make(chan struct{})}
	a := NewStorageArchiver(store, "b", logger.Discard())

	a.Archive(context.Background(), "meta_webhook", "accepted", "application/json", []byte("{}"))
	<-store.calls

	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while an upload was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the upload finished")
	}
}
