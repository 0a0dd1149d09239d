package identity

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Identity, error)
	// Row-locked for the running transaction.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Identity, error)
	// Provisions a default record on first touch.
	GetOrCreate(ctx context.Context, userID string) (*Identity, error)
	Save(ctx context.Context, i *Identity) error
}
