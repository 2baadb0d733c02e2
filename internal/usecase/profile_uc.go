package usecase

import (
	"context"
	"time"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
)

// Compile-time check
var _ ProfileUseCase = (*profileUC)(nil)

type ProfileUseCase interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error)
}

type profileUC struct {
	profiles repository.ProfileRepository
	now      func() time.Time
}

func NewProfileUseCase(profiles repository.ProfileRepository) *profileUC {
	return &profileUC{profiles: profiles, now: time.Now}
}

func (u *profileUC) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.profiles.FindByID(ctx, repository.NoTX, userID)
}

// Update edits the caller's own profile. Role and email are not editable here.
func (u *profileUC) Update(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(upd, u.now().UTC()); err != nil {
		return nil, err
	}
	if err := u.profiles.Update(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}
