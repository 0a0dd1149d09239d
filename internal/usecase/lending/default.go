package lending

import (
	"context"
	"fmt"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/usecase/credit"

	"go.uber.org/zap"
)

// RecordDefault applies the default penalty to an overdue loan. It is
// meant for an external scheduler and penalizes each loan at most once.
func (u *Usecase) RecordDefault(ctx context.Context, borrowerID string) (*LoanDTO, error) {
	var (
		out     *loan.Loan
		applied bool
	)
	err := u.uow.WithinLoanTx(ctx, borrowerID, func(r uow.Repos, l *loan.Loan) error {
		now := u.now()
		if !loan.Overdue(now, l) {
			return loan.ErrNotOverdue
		}
		out = l
		if l.PenalizedAt != nil {
			return nil
		}

		borrower, err := r.Identities.GetByUserIDForUpdate(ctx, borrowerID)
		if err != nil {
			if isNotFound(err) {
				return loan.ErrIdentityNotFound
			}
			return err
		}
		borrower.CreditScore = credit.Adjust(borrower.CreditScore, -credit.DefaultPenalty)
		if err := r.Identities.Save(ctx, borrower); err != nil {
			return err
		}

		loan.Touch(now, l)
		l.PenalizedAt = &now
		applied = true
		if err := r.History.MarkStatus(ctx, l.LoanID, loan.StatusOverdue); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, orNoLoan(err)
	}

	dto := toLoanDTO(u.now(), out)
	if !applied {
		dto.Message = "default already recorded"
		return &dto, nil
	}
	u.log.Info("loan default recorded", zap.String("loan_id", out.LoanID), zap.String("borrower_id", borrowerID))
	dto.Message = "default recorded"
	u.notify(ctx, &dto.Notice, borrowerID, fmt.Sprintf(
		"Your loan is overdue with %d coins unpaid. Your credit score dropped by %d.",
		out.Remaining(), credit.DefaultPenalty))
	return &dto, nil
}
