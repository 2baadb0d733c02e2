package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, email, full_name, avatar_url, job_title, department, position, phone, address,
       role, created_at, updated_at
  FROM profiles
 WHERE id = $1;
`
	var (
		p    model.Profile
		role string
	)
	err = exec.QueryRow(ctx, sql, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.JobTitle, &p.Department, &p.Position,
		&p.Phone, &p.Address, &role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.Role = model.ProfileRole(role)
	return &p, nil
}

// Save upserts the whole record, role included. Used by seeding and the auth sync.
func (r *ProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO profiles (id, email, full_name, avatar_url, job_title, department, position,
                      phone, address, role, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE
  SET email      = EXCLUDED.email,
      full_name  = EXCLUDED.full_name,
      avatar_url = EXCLUDED.avatar_url,
      job_title  = EXCLUDED.job_title,
      department = EXCLUDED.department,
      position   = EXCLUDED.position,
      phone      = EXCLUDED.phone,
      address    = EXCLUDED.address,
      role       = EXCLUDED.role,
      updated_at = EXCLUDED.updated_at;
`
	_, err = exec.Exec(ctx, sql,
		p.ID, p.Email, p.FullName, p.AvatarURL, p.JobTitle, p.Department, p.Position,
		p.Phone, p.Address, string(p.Role), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Update writes only the self-editable fields.
func (r *ProfileRepo) Update(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
UPDATE profiles
   SET full_name = $2, phone = $3, address = $4, position = $5, department = $6, updated_at = $7
 WHERE id = $1;
`
	ct, err := exec.Exec(ctx, sql, p.ID, p.FullName, p.Phone, p.Address, p.Position, p.Department, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
