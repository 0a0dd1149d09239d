package lending

import (
	"context"
	"fmt"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"

	"go.uber.org/zap"
)

// Forgive closes the borrower's peer loan without moving funds. Credit
// scores are left as they are.
func (u *Usecase) Forgive(ctx context.Context, lenderID, borrowerID string) (*LoanDTO, error) {
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, borrowerID, func(r uow.Repos, l *loan.Loan) error {
		if l.Kind != loan.KindPeer {
			return loan.ErrNotForgivable
		}
		if l.LenderID != lenderID {
			return loan.ErrNotLender
		}
		l.Close(loan.StatusForgiven)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return r.History.MarkStatus(ctx, l.LoanID, loan.StatusForgiven)
	})
	if err != nil {
		return nil, orNoLoan(err)
	}
	u.log.Info("loan forgiven", zap.String("loan_id", out.LoanID), zap.Int64("remaining", out.Remaining()))

	dto := toLoanDTO(u.now(), out)
	dto.Message = "loan forgiven"
	u.notify(ctx, &dto.Notice, borrowerID, fmt.Sprintf(
		"%s forgave your loan. The remaining %d coins are no longer owed.", lenderID, out.Remaining()))
	return &dto, nil
}

// Remind sends the borrower a reminder with the outstanding balance.
func (u *Usecase) Remind(ctx context.Context, lenderID, borrowerID string) (*ReminderDTO, error) {
	l, err := u.activeLoan(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, loan.ErrNoActiveLoan
	}
	if l.Kind != loan.KindPeer || l.LenderID != lenderID {
		return nil, loan.ErrNotLender
	}

	dto := &ReminderDTO{LoanID: l.LoanID, Remaining: l.Remaining(), Deadline: l.Deadline}
	msg := fmt.Sprintf("Reminder from %s: you still owe %d coins, due by %s.",
		lenderID, l.Remaining(), l.Deadline.Format("2006-01-02 15:04 MST"))
	if loan.EffectiveStatus(u.now(), l) == loan.StatusOverdue {
		msg = fmt.Sprintf("Reminder from %s: your loan is overdue. You still owe %d coins, due since %s.",
			lenderID, l.Remaining(), l.Deadline.Format("2006-01-02 15:04 MST"))
	}
	u.notify(ctx, &dto.Notice, borrowerID, msg)
	dto.Delivered = len(dto.Warnings) == 0
	if dto.Delivered {
		dto.Message = "reminder sent"
	} else {
		dto.Message = "reminder could not be delivered"
	}
	return dto, nil
}
