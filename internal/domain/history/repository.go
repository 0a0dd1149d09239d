package history

import (
	"context"

	"lending-engine/internal/domain/loan"
)

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// Updates the status of every entry recorded for loanID.
	MarkStatus(ctx context.Context, loanID string, status loan.Status) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]Entry, error)
}
