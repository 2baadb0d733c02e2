package repository

import (
	"context"

	"agent-promosi/internal/domain/model"
)

// ApplicationRepository records job applications. Create returns
// domain.ErrAlreadyApplied when the (job, user) pair already exists.
type ApplicationRepository interface {
	Create(ctx context.Context, tx Tx, app *model.JobApplication) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.JobApplication, error)
}
