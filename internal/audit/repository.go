package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertRecordQuery = `
	INSERT INTO audit_records (id, actor_id, action, subject_lead_id, source, reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends a record. Re-delivering the same record id is a no-op so
// queued retries never duplicate an outcome.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, insertRecordQuery,
		rec.ID, rec.ActorID, string(rec.Action), rec.SubjectLeadID, rec.Source, rec.Reason, rec.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
