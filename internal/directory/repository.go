package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const getWorkerQuery = `SELECT id, name, email, role, status FROM workers WHERE id = $1`

const listActiveSalesWorkersQuery = `
	SELECT id, name, email, role, status
	FROM workers
	WHERE role = 'sales' AND status = 'active'
	ORDER BY id`

const getCampaignQuery = `SELECT id, name, status FROM campaigns WHERE id = $1`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetWorker(ctx context.Context, id uuid.UUID) (Worker, error) {
	var w Worker
	err := r.pool.QueryRow(ctx, getWorkerQuery, id).Scan(&w.ID, &w.Name, &w.Email, &w.Role, &w.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, ErrNotFound
	}
	if err != nil {
		return Worker{}, fmt.Errorf("get worker: %w", err)
	}
	return w, nil
}

func (r *Repository) ListActiveSalesWorkers(ctx context.Context) ([]Worker, error) {
	rows, err := r.pool.Query(ctx, listActiveSalesWorkersQuery)
	if err != nil {
		return nil, fmt.Errorf("list active sales workers: %w", err)
	}
	defer rows.Close()

	workers := make([]Worker, 0)
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Email, &w.Role, &w.Status); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *Repository) GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error) {
	var c Campaign
	err := r.pool.QueryRow(ctx, getCampaignQuery, id).Scan(&c.ID, &c.Name, &c.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	if err != nil {
		return Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}
