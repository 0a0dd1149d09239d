package lending

import (
	"context"
	"fmt"

	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/ledger"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/usecase/negotiation"
	"lending-engine/pkg/id"

	"go.uber.org/zap"
)

// AcceptTerms turns a session with terms into a funded loan. The session
// is discarded once the attempt finishes, whether it succeeded or not.
func (u *Usecase) AcceptTerms(ctx context.Context, actorID, requestID string) (*LoanDTO, error) {
	sess, err := u.sessions.BeginAccept(requestID, actorID)
	if err != nil {
		return nil, err
	}
	defer u.sessions.Remove(requestID)

	release, err := u.holdBorrower(ctx, sess.BorrowerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *loan.Loan
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := u.disburse(ctx, r, sess)
		out = l
		return err
	})
	if err != nil {
		u.log.Info("loan acceptance failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}
	u.log.Info("loan disbursed",
		zap.String("loan_id", out.LoanID),
		zap.String("request_id", requestID),
		zap.Int64("amount", out.Principal))

	dto := toLoanDTO(u.now(), out)
	dto.Message = "loan accepted and funds transferred"
	u.notify(ctx, &dto.Notice, sess.LenderID, fmt.Sprintf(
		"%s accepted your terms. %d coins were sent and %d are due by %s.",
		sess.BorrowerID, sess.Amount, out.TotalToPay, out.Deadline.Format("2006-01-02 15:04 MST")))
	return &dto, nil
}

// disburse moves the principal and writes the loan inside r's transaction.
func (u *Usecase) disburse(ctx context.Context, r uow.Repos, s negotiation.Session) (*loan.Loan, error) {
	lender, borrower, err := lockPair(ctx, r.Identities, s.LenderID, s.BorrowerID)
	if err != nil {
		return nil, err
	}

	// balances and loans may have changed since the request was opened
	if _, err := r.Loans.GetActiveByBorrowerIDForUpdate(ctx, s.BorrowerID); err == nil {
		return nil, loan.ErrActiveLoan
	} else if !isNotFound(err) {
		return nil, err
	}
	if !lender.Debit(s.Amount) {
		return nil, loan.ErrLenderFunds
	}
	borrower.Wallet += s.Amount

	if err := r.Identities.Save(ctx, lender); err != nil {
		return nil, err
	}
	if err := r.Identities.Save(ctx, borrower); err != nil {
		return nil, err
	}

	now := u.now()
	l := &loan.Loan{
		LoanID:       id.NewID32(),
		Kind:         loan.KindPeer,
		BorrowerID:   s.BorrowerID,
		LenderID:     s.LenderID,
		Principal:    s.Amount,
		TotalToPay:   s.TotalToPay,
		InterestRate: s.InterestRate,
		Deadline:     loan.DeadlineFrom(now, s.TermDays),
		Installments: s.Installments,
	}
	l.Open()
	if err := r.Loans.Create(ctx, l); err != nil {
		return nil, err
	}

	for _, e := range []history.Entry{
		{LoanID: l.LoanID, UserID: s.LenderID, Role: history.RoleLender, Amount: s.Amount, Status: loan.StatusActive, Date: now},
		{LoanID: l.LoanID, UserID: s.BorrowerID, Role: history.RoleBorrower, Amount: s.Amount, Status: loan.StatusActive, Date: now},
	} {
		if err := r.History.Append(ctx, &e); err != nil {
			return nil, err
		}
	}

	if err := r.Ledger.Append(ctx, &ledger.Entry{
		EntryID:   id.NewID32(),
		LoanID:    l.LoanID,
		Kind:      ledger.KindDisbursement,
		FromParty: s.LenderID,
		ToParty:   s.BorrowerID,
		Amount:    s.Amount,
	}); err != nil {
		return nil, err
	}
	return l, nil
}

// lockPair locks both identities in user id order so that two transfers
// over the same pair cannot deadlock.
func lockPair(ctx context.Context, repo identity.Repository, lenderID, borrowerID string) (lender, borrower *identity.Identity, err error) {
	first, second := lenderID, borrowerID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*identity.Identity, 2)
	for _, uid := range []string{first, second} {
		i, err := repo.GetByUserIDForUpdate(ctx, uid)
		if err != nil {
			if isNotFound(err) && uid == lenderID {
				return nil, nil, loan.ErrLenderUnknown
			}
			if isNotFound(err) {
				return nil, nil, loan.ErrIdentityNotFound
			}
			return nil, nil, err
		}
		locked[uid] = i
	}
	return locked[lenderID], locked[borrowerID], nil
}
