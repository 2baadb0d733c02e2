package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
)

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

func (r *ApplicationRepo) Create(ctx context.Context, tx repository.Tx, a *model.JobApplication) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO job_applications (id, job_id, user_id, created_at)
VALUES ($1, $2, $3, $4);
`
	if _, err := exec.Exec(ctx, sql, a.ID, a.JobID, a.UserID, a.CreatedAt); err != nil {
		return mapApplicationError(err)
	}
	return nil
}

func (r *ApplicationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.JobApplication, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, job_id, user_id, created_at
  FROM job_applications
 WHERE user_id = $1
 ORDER BY created_at DESC;
`
	rows, err := exec.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	out := make([]*model.JobApplication, 0)
	for rows.Next() {
		var a model.JobApplication
		if err := rows.Scan(&a.ID, &a.JobID, &a.UserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// mapApplicationError turns constraint violations into domain errors.
func mapApplicationError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrAlreadyApplied
		case pgForeignKeyViolation:
			return domain.ErrNotFound
		}
	}
	return fmt.Errorf("create application: %w", err)
}
