package repository

import (
	"context"
	"time"

	"agent-promosi/internal/domain/model"
)

// JobRepository is the port for job listing persistence.
type JobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.JobListing) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.JobListing, error)
	// ListAll returns every listing ordered by deadline then id.
	ListAll(ctx context.Context, tx Tx) ([]*model.JobListing, error)
	// Search pushes the filter down to storage. Field filters match as substrings.
	Search(ctx context.Context, tx Tx, f model.JobFilter) ([]*model.JobListing, error)
	IncrementApplicants(ctx context.Context, tx Tx, id string) error
	// RefreshStatuses recomputes every status badge and returns the number of rows changed.
	RefreshStatuses(ctx context.Context, tx Tx, now time.Time, closingWindow time.Duration, hotThreshold int) (int64, error)
}
