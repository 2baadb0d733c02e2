package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"agent-promosi/internal/config"
	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/infra/metrics"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

type JobUseCase interface {
	List(ctx context.Context, f model.JobFilter) ([]*model.JobListing, error)
	Facets(ctx context.Context) (model.JobFacets, error)
	Get(ctx context.Context, id string) (*model.JobListing, error)
	// Apply records one application per (job, user) and bumps the applicant count
	// in the same transaction. A repeat returns domain.ErrAlreadyApplied.
	Apply(ctx context.Context, jobID, userID string) (*model.JobApplication, error)
	ListApplications(ctx context.Context, userID string) ([]*model.JobApplication, error)
	RefreshStatuses(ctx context.Context) (int64, error)
	// Create publishes a new listing with its status derived from the deadline.
	Create(ctx context.Context, d model.JobDraft) (*model.JobListing, error)
}

type jobUC struct {
	jobs repository.JobRepository
	apps repository.ApplicationRepository
	tm   repository.TransactionManager
	cfg  config.JobsConfig
	log  *zerolog.Logger
	now  func() time.Time
}

func NewJobUseCase(jobs repository.JobRepository, apps repository.ApplicationRepository, tm repository.TransactionManager, cfg config.JobsConfig, logger *zerolog.Logger) *jobUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &jobUC{jobs: jobs, apps: apps, tm: tm, cfg: cfg, log: logger, now: time.Now}
}

// List filters in memory over the full set in client mode, or pushes the
// filter down to storage in remote mode.
func (u *jobUC) List(ctx context.Context, f model.JobFilter) ([]*model.JobListing, error) {
	if u.cfg.FilterMode == config.FilterModeRemote {
		metrics.IncJobList(config.FilterModeRemote)
		if f.IsEmpty() {
			return u.jobs.ListAll(ctx, repository.NoTX)
		}
		return u.jobs.Search(ctx, repository.NoTX, f)
	}
	metrics.IncJobList(config.FilterModeClient)
	all, err := u.jobs.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return model.FilterJobs(all, f), nil
}

func (u *jobUC) Facets(ctx context.Context) (model.JobFacets, error) {
	all, err := u.jobs.ListAll(ctx, repository.NoTX)
	if err != nil {
		return model.JobFacets{}, err
	}
	return model.BuildFacets(all), nil
}

func (u *jobUC) Get(ctx context.Context, id string) (*model.JobListing, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.jobs.FindByID(ctx, repository.NoTX, id)
}

func (u *jobUC) Apply(ctx context.Context, jobID, userID string) (*model.JobApplication, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "JobUC.Apply")()

	app, err := model.NewJobApplication(uuid.NewString(), jobID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := u.jobs.FindByID(ctx, repository.NoTX, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncJobApplication("not_found")
		}
		return nil, err
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.apps.Create(ctx, tx, app); err != nil {
			return err
		}
		return u.jobs.IncrementApplicants(ctx, tx, jobID)
	})
	switch {
	case err == nil:
		metrics.IncJobApplication("created")
		log.Info().Str("job_id", jobID).Msg("job application recorded")
		return app, nil
	case errors.Is(err, domain.ErrAlreadyApplied):
		metrics.IncJobApplication("duplicate")
		return nil, err
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncJobApplication("not_found")
		return nil, err
	default:
		metrics.IncJobApplication("failed")
		log.Error().Err(err).Str("job_id", jobID).Msg("job application failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
}

func (u *jobUC) ListApplications(ctx context.Context, userID string) ([]*model.JobApplication, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.apps.ListByUser(ctx, repository.NoTX, userID)
}

func (u *jobUC) RefreshStatuses(ctx context.Context) (int64, error) {
	n, err := u.jobs.RefreshStatuses(ctx, repository.NoTX, u.now(), u.cfg.ClosingWindow, u.cfg.HotThreshold)
	if err != nil {
		return 0, err
	}
	metrics.AddJobStatusRefreshed(n)
	return n, nil
}

func (u *jobUC) Create(ctx context.Context, d model.JobDraft) (*model.JobListing, error) {
	j, err := d.Listing(uuid.NewString())
	if err != nil {
		return nil, err
	}
	j.Status = j.StatusAt(u.now(), u.cfg.ClosingWindow, u.cfg.HotThreshold)
	if err := u.jobs.Save(ctx, repository.NoTX, j); err != nil {
		return nil, err
	}
	log := logging.With(ctx, u.log)
	log.Info().Str("job_id", j.ID).Str("institution", j.Institution).Msg("job listing created")
	return j, nil
}
