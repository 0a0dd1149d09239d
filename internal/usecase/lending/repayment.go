package lending

import (
	"context"
	"fmt"

	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/ledger"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/treasury"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/usecase/credit"
	"lending-engine/pkg/id"

	"go.uber.org/zap"
)

// PayFull pays everything still owed on the borrower's active loan.
func (u *Usecase) PayFull(ctx context.Context, borrowerID string) (*PaymentDTO, error) {
	return u.pay(ctx, borrowerID, false, func(l *loan.Loan) (int64, error) {
		return l.Remaining(), nil
	})
}

// PayInstallment pays one installment, or the remainder when it is smaller.
func (u *Usecase) PayInstallment(ctx context.Context, borrowerID string) (*PaymentDTO, error) {
	return u.pay(ctx, borrowerID, true, func(l *loan.Loan) (int64, error) {
		if l.Installments <= 0 {
			return 0, loan.ErrNoInstallmentPlan
		}
		return min(loan.InstallmentAmount(l.TotalToPay, l.Installments), l.Remaining()), nil
	})
}

// PayPartial pays amount, capped at what is still owed.
func (u *Usecase) PayPartial(ctx context.Context, borrowerID string, amount int64) (*PaymentDTO, error) {
	if err := loan.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return u.pay(ctx, borrowerID, false, func(l *loan.Loan) (int64, error) {
		return min(amount, l.Remaining()), nil
	})
}

type payment struct {
	loan    *loan.Loan
	paid    int64
	settled bool
	score   int
}

func (u *Usecase) pay(ctx context.Context, borrowerID string, installment bool, plan func(*loan.Loan) (int64, error)) (*PaymentDTO, error) {
	var p payment
	err := u.uow.WithinLoanTx(ctx, borrowerID, func(r uow.Repos, l *loan.Loan) error {
		now := u.now()
		loan.Touch(now, l)

		amount, err := plan(l)
		if err != nil {
			return err
		}

		payer, lender, err := lockParties(ctx, r.Identities, l)
		if err != nil {
			return err
		}
		if !payer.Debit(amount) {
			return loan.ErrPayerFunds
		}

		entry := &ledger.Entry{EntryID: id.NewID32(), LoanID: l.LoanID, FromParty: borrowerID, Amount: amount}
		switch cp := l.Counterparty().(type) {
		case loan.PeerLender:
			// peer repayments land in the lender's bank
			lender.Bank += amount
			if err := r.Identities.Save(ctx, lender); err != nil {
				return err
			}
			entry.Kind, entry.ToParty = ledger.KindRepayment, cp.UserID
		case loan.Treasury:
			if err := r.Treasury.Add(ctx, amount); err != nil {
				return err
			}
			entry.Kind, entry.ToParty = ledger.KindTreasuryRepayment, treasury.Party
		}

		l.AmountPaid += amount
		if installment {
			l.InstallmentsPaid++
		}
		p = payment{loan: l, paid: amount}
		if l.Settled() {
			p.settled = true
			l.Close(loan.StatusPaid)
			payer.CreditScore = credit.Adjust(payer.CreditScore, credit.SettlementBonus)
			if err := r.History.MarkStatus(ctx, l.LoanID, loan.StatusPaid); err != nil {
				return err
			}
		} else {
			payer.CreditScore = credit.Adjust(payer.CreditScore, credit.ProgressBonus)
		}
		p.score = payer.CreditScore

		if err := r.Identities.Save(ctx, payer); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return r.Ledger.Append(ctx, entry)
	})
	if err != nil {
		return nil, orNoLoan(err)
	}

	l := p.loan
	u.log.Info("loan payment applied",
		zap.String("loan_id", l.LoanID),
		zap.Int64("paid", p.paid),
		zap.Int64("remaining", l.Remaining()),
		zap.Bool("settled", p.settled))

	dto := &PaymentDTO{Paid: p.paid, Settled: p.settled, CreditScore: p.score, Loan: toLoanDTO(u.now(), l)}
	if p.settled {
		dto.Message = "loan fully repaid"
	} else {
		dto.Message = fmt.Sprintf("paid %d coins, %d remaining", p.paid, l.Remaining())
	}
	if l.Kind == loan.KindPeer {
		msg := fmt.Sprintf("%s paid you %d coins. %d remaining.", borrowerID, p.paid, l.Remaining())
		if p.settled {
			msg = fmt.Sprintf("%s paid you %d coins and settled the loan.", borrowerID, p.paid)
		}
		u.notify(ctx, &dto.Notice, l.LenderID, msg)
	}
	return dto, nil
}

// lockParties locks the payer and, for peer loans, the lender. Both go
// through lockPair so every transfer takes row locks in the same order.
func lockParties(ctx context.Context, repo identity.Repository, l *loan.Loan) (payer, lender *identity.Identity, err error) {
	if cp, ok := l.Counterparty().(loan.PeerLender); ok {
		lender, payer, err = lockPair(ctx, repo, cp.UserID, l.BorrowerID)
		return payer, lender, err
	}
	payer, err = repo.GetByUserIDForUpdate(ctx, l.BorrowerID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, loan.ErrIdentityNotFound
		}
		return nil, nil, err
	}
	return payer, nil, nil
}
