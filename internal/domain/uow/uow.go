package uow

import (
	"context"

	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/ledger"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/treasury"
)

// Repos are bound to one transaction.
type Repos struct {
	Identities identity.Repository
	Loans      loan.Repository
	History    history.Repository
	Treasury   treasury.Repository
	Ledger     ledger.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the borrower's active loan first, then pass it in
	WithinLoanTx(ctx context.Context, borrowerID string, fn func(r Repos, l *loan.Loan) error) error
}
