package mysql

import (
	"context"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Identities: &IdentityRepository{db: tx},
		Loans:      &LoanRepository{db: tx},
		History:    &HistoryRepository{db: tx},
		Treasury:   &TreasuryRepository{db: tx, name: treasuryVaultName},
		Ledger:     &LedgerRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, borrowerID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetActiveByBorrowerIDForUpdate(ctx, borrowerID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
