package repository

import (
	"context"

	"agent-promosi/internal/domain/model"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Profile, error)
	Save(ctx context.Context, tx Tx, p *model.Profile) error
	Update(ctx context.Context, tx Tx, p *model.Profile) error
}
