package lending

import (
	"context"
	"fmt"

	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/ledger"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/treasury"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/usecase/credit"
	"lending-engine/pkg/id"

	"go.uber.org/zap"
)

// CreditLimit returns how much the treasury would lend userID right now.
func (u *Usecase) CreditLimit(ctx context.Context, userID string) (*LimitDTO, error) {
	who, err := u.identities.GetByUserID(ctx, userID)
	switch {
	case isNotFound(err):
		// not provisioned yet: answer with the defaults it would get
		who = identity.New(userID)
	case err != nil:
		return nil, err
	}
	l, err := u.activeLoan(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.limitFor(who, l)
	dto.Message = fmt.Sprintf("credit limit is %d coins", dto.Limit)
	return dto, nil
}

func (u *Usecase) limitFor(who *identity.Identity, active *loan.Loan) *LimitDTO {
	dirty := loan.Dirty(u.now(), active)
	capacity := u.capacities.For(who.JobTier)
	return &LimitDTO{
		UserID:       who.UserID,
		Limit:        credit.Limit(capacity, who.NetWorth(), who.CreditScore, dirty),
		BankCapacity: capacity,
		NetWorth:     who.NetWorth(),
		CreditScore:  who.CreditScore,
		Dirty:        dirty,
	}
}

// RequestTreasuryLoan lends amount from the central vault at the fixed
// treasury rate and term.
func (u *Usecase) RequestTreasuryLoan(ctx context.Context, borrowerID string, amount int64) (*LoanDTO, error) {
	if err := loan.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if _, err := u.identities.GetOrCreate(ctx, borrowerID); err != nil {
		return nil, err
	}
	release, err := u.holdBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	defer release()
	if err := u.borrowerGate(ctx, borrowerID); err != nil {
		return nil, err
	}

	var out *loan.Loan
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		borrower, err := r.Identities.GetByUserIDForUpdate(ctx, borrowerID)
		if err != nil {
			return err
		}
		if _, err := r.Loans.GetActiveByBorrowerIDForUpdate(ctx, borrowerID); err == nil {
			return loan.ErrActiveLoan
		} else if !isNotFound(err) {
			return err
		}

		if amount > u.limitFor(borrower, nil).Limit {
			return loan.ErrOverLimit
		}
		ok, err := r.Treasury.Remove(ctx, amount)
		if err != nil {
			return err
		}
		if !ok {
			return loan.ErrTreasuryFunds
		}

		borrower.Wallet += amount
		if err := r.Identities.Save(ctx, borrower); err != nil {
			return err
		}

		now := u.now()
		l := &loan.Loan{
			LoanID:       id.NewID32(),
			Kind:         loan.KindTreasury,
			BorrowerID:   borrowerID,
			Principal:    amount,
			TotalToPay:   loan.TotalToPay(amount, loan.TreasuryInterestRate),
			InterestRate: loan.TreasuryInterestRate,
			Deadline:     loan.DeadlineFrom(now, loan.TreasuryTermDays),
		}
		l.Open()
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.History.Append(ctx, &history.Entry{
			LoanID: l.LoanID, UserID: borrowerID, Role: history.RoleBorrower,
			Amount: amount, Status: loan.StatusActive, Date: now,
		}); err != nil {
			return err
		}
		out = l
		return r.Ledger.Append(ctx, &ledger.Entry{
			EntryID:   id.NewID32(),
			LoanID:    l.LoanID,
			Kind:      ledger.KindTreasuryDisbursement,
			FromParty: treasury.Party,
			ToParty:   borrowerID,
			Amount:    amount,
		})
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("treasury loan disbursed",
		zap.String("loan_id", out.LoanID),
		zap.String("borrower_id", borrowerID),
		zap.Int64("amount", amount))

	dto := toLoanDTO(u.now(), out)
	dto.Message = fmt.Sprintf("treasury loan approved, repay %d coins within %d days", out.TotalToPay, loan.TreasuryTermDays)
	return &dto, nil
}

func (u *Usecase) TreasuryBalance(ctx context.Context) (*VaultDTO, error) {
	v, err := u.treasury.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, loan.NotFound("treasury vault is not initialized")
		}
		return nil, err
	}
	dto := &VaultDTO{Name: v.Name, Balance: v.Balance}
	dto.Message = fmt.Sprintf("treasury holds %d coins", v.Balance)
	return dto, nil
}
