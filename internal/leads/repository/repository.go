// Package repository is the Dedup & Commit store for leads. Phone uniqueness
// is enforced by the leads_phone_key constraint, never by a prior lookup.
package repository

import (
	"context"
	"errors"
	"fmt"

	"lead_intake_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	constraintPhoneKey      = "leads_phone_key"
	constraintCampaignFKey  = "leads_campaign_id_fkey"
	constraintAssignedToKey = "leads_assigned_to_fkey"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrDuplicatePhone  = errors.New("a lead with this phone already exists")
	ErrUnknownCampaign = errors.New("campaign does not exist")
	ErrUnknownAssignee = errors.New("assignee does not exist")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CommitParams is a validated lead ready to be stored.
type CommitParams struct {
	Phone       string
	FullName    string
	Email       *string
	Product     *string
	Notes       *string
	Platform    string
	CampaignID  *uuid.UUID
	AssignedTo  *uuid.UUID
	Status      string
	LeadQuality string
	LeadSource  string
}

const leadColumns = `id, phone, full_name, email, product, notes, platform, campaign_id,
	assigned_to, status, lead_quality, lead_source, created_at`

const commitLeadQuery = `
	INSERT INTO leads (phone, full_name, email, product, notes, platform, campaign_id,
		assigned_to, status, lead_quality, lead_source)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING ` + leadColumns

const assignIfUnassignedQuery = `
	UPDATE leads SET assigned_to = $2
	WHERE id = $1 AND assigned_to IS NULL`

const getLeadByIDQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

const countOpenLeadsByWorkerQuery = `
	SELECT assigned_to, COUNT(*)
	FROM leads
	WHERE assigned_to = ANY($1)
	  AND status NOT IN ('closed-won', 'closed-lost')
	GROUP BY assigned_to`

// Commit inserts the lead in a single statement. A concurrent or earlier lead
// with the same phone yields ErrDuplicatePhone. Foreign key violations on
// campaign or assignee yield ErrUnknownCampaign and ErrUnknownAssignee.
func (r *Repository) Commit(ctx context.Context, p CommitParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, commitLeadQuery,
		p.Phone, p.FullName, p.Email, p.Product, p.Notes, p.Platform, p.CampaignID,
		p.AssignedTo, p.Status, p.LeadQuality, p.LeadSource,
	)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, mapCommitError(err)
	}
	return lead, nil
}

func mapCommitError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("commit lead: %w", err)
	}

	switch {
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintPhoneKey:
		return ErrDuplicatePhone
	case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == constraintCampaignFKey:
		return ErrUnknownCampaign
	case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == constraintAssignedToKey:
		return ErrUnknownAssignee
	}
	return fmt.Errorf("commit lead: %w", err)
}

// AssignIfUnassigned sets assigned_to only when it is still empty. It
// reports whether the row was updated.
func (r *Repository) AssignIfUnassigned(ctx context.Context, leadID, workerID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, assignIfUnassignedQuery, leadID, workerID)
	if err != nil {
		return false, fmt.Errorf("assign lead: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// CountOpenLeadsByWorker returns the number of leads not yet closed per
// worker. Workers without open leads are absent from the map.
func (r *Repository) CountOpenLeadsByWorker(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(workerIDs))
	if len(workerIDs) == 0 {
		return counts, nil
	}

	rows, err := r.pool.Query(ctx, countOpenLeadsByWorkerQuery, workerIDs)
	if err != nil {
		return nil, fmt.Errorf("count open leads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.ID, &l.Phone, &l.FullName, &l.Email, &l.Product, &l.Notes, &l.Platform,
		&l.CampaignID, &l.AssignedTo, &l.Status, &l.LeadQuality, &l.LeadSource, &l.CreatedAt,
	)
	return l, err
}
