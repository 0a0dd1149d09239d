package identitymock

import (
	"context"

	domain "lending-engine/internal/domain/identity"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled, unset writes succeed.
type Repo struct {
	GetByUserIDFn          func(ctx context.Context, userID string) (*domain.Identity, error)
	GetByUserIDForUpdateFn func(ctx context.Context, userID string) (*domain.Identity, error)
	GetOrCreateFn          func(ctx context.Context, userID string) (*domain.Identity, error)
	SaveFn                 func(ctx context.Context, i *domain.Identity) error
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Identity, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Identity, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetOrCreate(ctx context.Context, userID string) (*domain.Identity, error) {
	if m.GetOrCreateFn != nil {
		return m.GetOrCreateFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, i *domain.Identity) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, i)
	}
	return nil
}
