package treasury

import "context"

type Repository interface {
	Get(ctx context.Context) (*Vault, error)
	Add(ctx context.Context, amount int64) error
	// Remove withdraws amount only when the vault covers all of it.
	// It reports false, without error, when funds are short.
	Remove(ctx context.Context, amount int64) (bool, error)
}
