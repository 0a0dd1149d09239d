package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Active loan of a borrower, either variant.
	GetActiveByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	// Same as GetActiveByBorrowerID, row-locked for the running transaction.
	GetActiveByBorrowerIDForUpdate(ctx context.Context, borrowerID string) (*Loan, error)
}
