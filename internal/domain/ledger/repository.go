package ledger

import "context"

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByLoanID(ctx context.Context, loanID string) ([]Entry, error)
}
