package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

const jobColumns = `id, title, institution, institution_type, location, education, experience,
       salary, deadline, applicants, status, description, requirements, logo_url,
       created_at, updated_at`

func (r *JobRepo) Save(ctx context.Context, tx repository.Tx, j *model.JobListing) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO jobs (id, title, institution, institution_type, location, education, experience,
                  salary, deadline, applicants, status, description, requirements, logo_url,
                  created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE
  SET title            = EXCLUDED.title,
      institution      = EXCLUDED.institution,
      institution_type = EXCLUDED.institution_type,
      location         = EXCLUDED.location,
      education        = EXCLUDED.education,
      experience       = EXCLUDED.experience,
      salary           = EXCLUDED.salary,
      deadline         = EXCLUDED.deadline,
      status           = EXCLUDED.status,
      description      = EXCLUDED.description,
      requirements     = EXCLUDED.requirements,
      logo_url         = EXCLUDED.logo_url,
      updated_at       = EXCLUDED.updated_at;
`
	reqs := j.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	_, err = exec.Exec(ctx, sql,
		j.ID, j.Title, j.Institution, j.InstitutionType, j.Location, j.Education, j.Experience,
		j.Salary, nullTime(j.Deadline), j.Applicants, string(j.Status), j.Description, reqs, j.LogoURL,
		j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func (r *JobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.JobListing, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	row := exec.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1;`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.JobListing, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY deadline ASC NULLS LAST, id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return collectJobs(rows)
}

// Search builds an ILIKE query. Field filters become substring matches here,
// unlike the in-memory filter which compares them exactly.
func (r *JobRepo) Search(ctx context.Context, tx repository.Tx, f model.JobFilter) ([]*model.JobListing, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql, args := buildSearch(f)
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	return collectJobs(rows)
}

func buildSearch(f model.JobFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		p := arg(likePattern(term))
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR institution ILIKE %[1]s OR location ILIKE %[1]s)", p))
	}
	if f.Institution != "" {
		where = append(where, "institution ILIKE "+arg(likePattern(f.Institution)))
	}
	if f.Position != "" {
		where = append(where, "title ILIKE "+arg(likePattern(f.Position)))
	}
	if f.InstitutionType != "" {
		where = append(where, "institution_type ILIKE "+arg(likePattern(f.InstitutionType)))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + jobColumns + " FROM jobs")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY deadline ASC NULLS LAST, id ASC;")
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *JobRepo) IncrementApplicants(ctx context.Context, tx repository.Tx, id string) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := exec.Exec(ctx, `UPDATE jobs SET applicants = applicants + 1, updated_at = now() WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("increment applicants: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepo) RefreshStatuses(ctx context.Context, tx repository.Tx, now time.Time, closingWindow time.Duration, hotThreshold int) (int64, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `
WITH computed AS (
    SELECT id,
           CASE
               WHEN deadline IS NOT NULL AND deadline <= $1::timestamptz + make_interval(secs => $2::double precision) THEN 'closing'
               WHEN $3::int > 0 AND applicants >= $3::int THEN 'hot'
               ELSE 'active'
           END AS next
      FROM jobs
)
UPDATE jobs j
   SET status = c.next, updated_at = $1
  FROM computed c
 WHERE j.id = c.id AND j.status <> c.next;
`
	ct, err := exec.Exec(ctx, sql, now, closingWindow.Seconds(), hotThreshold)
	if err != nil {
		return 0, fmt.Errorf("refresh job statuses: %w", err)
	}
	return ct.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*model.JobListing, error) {
	var (
		j        model.JobListing
		deadline *time.Time
		status   string
	)
	if err := row.Scan(
		&j.ID, &j.Title, &j.Institution, &j.InstitutionType, &j.Location, &j.Education, &j.Experience,
		&j.Salary, &deadline, &j.Applicants, &status, &j.Description, &j.Requirements, &j.LogoURL,
		&j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if deadline != nil {
		j.Deadline = *deadline
	}
	j.Status = model.JobStatus(status)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]*model.JobListing, error) {
	defer rows.Close()
	out := make([]*model.JobListing, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
