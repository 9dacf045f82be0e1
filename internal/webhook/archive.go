package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lead_intake_backend/internal/adapters/storage"
	"lead_intake_backend/platform/logger"

	"github.com/google/uuid"
)

const archiveTimeout = 10 * time.Second

// PayloadArchiver keeps a copy of raw deliveries for replay and debugging.
type PayloadArchiver interface {
	Archive(ctx context.Context, source, outcome, contentType string, body []byte)
}

// StorageArchiver writes deliveries to object storage in the background.
// Failures are logged and never affect the intake response.
type StorageArchiver struct {
	store  storage.StorageService
	bucket string
	log    *logger.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewStorageArchiver(store storage.StorageService, bucket string, log *logger.Logger) *StorageArchiver {
	return &StorageArchiver{store: store, bucket: bucket, log: log, now: time.Now}
}

func (a *StorageArchiver) Archive(ctx context.Context, source, outcome, contentType string, body []byte) {
	if len(body) == 0 {
		return
	}
	if contentType == "" {
		contentType = "application/json"
	}
	key := archiveKey(a.now(), source, outcome, uuid.New())
	data := append([]byte(nil), body...)
	log := a.log.WithContext(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		if err := a.store.PutObject(putCtx, a.bucket, key, contentType, data); err != nil {
			log.Warn("webhook payload archive failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until uploads already started have finished. Called on
// shutdown after the HTTP server stopped accepting deliveries.
func (a *StorageArchiver) Wait() {
	a.wg.Wait()
}

// archiveKey partitions by source and day: meta_webhook/2025/01/31/accepted-<id>.
func archiveKey(at time.Time, source, outcome string, id uuid.UUID) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s-%s", source, at.Year(), at.Month(), at.Day(), outcome, id)
}
