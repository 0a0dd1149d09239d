package lending

import (
	"context"
	"fmt"

	"lending-engine/internal/domain/loan"
	"lending-engine/internal/usecase/credit"
	"lending-engine/internal/usecase/negotiation"

	"go.uber.org/zap"
)

func (u *Usecase) InitiateRequest(ctx context.Context, in InitiateInput) (*SessionDTO, error) {
	if err := loan.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if in.BorrowerID == in.LenderID {
		return nil, loan.ErrSelfLoan
	}

	if _, err := u.identities.GetByUserID(ctx, in.LenderID); err != nil {
		if isNotFound(err) {
			return nil, loan.ErrLenderUnknown
		}
		return nil, err
	}
	borrower, err := u.identities.GetOrCreate(ctx, in.BorrowerID)
	if err != nil {
		return nil, err
	}

	if err := u.borrowerGate(ctx, in.BorrowerID); err != nil {
		return nil, err
	}
	if !credit.EligibleForPeerLoan(borrower.CreditScore) {
		return nil, loan.ErrScoreTooLow
	}

	sess, err := u.sessions.Open(in.BorrowerID, in.LenderID, in.Amount)
	if err != nil {
		return nil, err
	}
	u.log.Info("loan request opened",
		zap.String("request_id", sess.RequestID),
		zap.String("borrower_id", sess.BorrowerID),
		zap.String("lender_id", sess.LenderID),
		zap.Int64("amount", sess.Amount))

	dto := &SessionDTO{Session: sess}
	dto.Message = "loan request sent"
	u.notify(ctx, &dto.Notice, in.LenderID, fmt.Sprintf(
		"%s asks to borrow %d coins. Define the terms of request %s to continue.",
		in.BorrowerID, in.Amount, sess.RequestID))
	return dto, nil
}

func (u *Usecase) DefineTerms(ctx context.Context, in TermsInput) (*SessionDTO, error) {
	if err := loan.ValidateTerms(in.InterestRate, in.TermDays, in.Installments); err != nil {
		return nil, err
	}

	sess, err := u.sessions.Update(in.RequestID, func(s *negotiation.Session) error {
		if s.LenderID != in.ActorID {
			return loan.ErrNotLender
		}
		if s.Status != negotiation.StatusPendingTerms {
			return loan.ErrSessionState
		}
		s.InterestRate = in.InterestRate
		s.TermDays = in.TermDays
		s.Installments = in.Installments
		s.TotalToPay = loan.TotalToPay(s.Amount, in.InterestRate)
		s.Status = negotiation.StatusPendingAcceptance
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := &SessionDTO{Session: sess}
	dto.Message = "terms sent to the borrower"
	u.notify(ctx, &dto.Notice, sess.BorrowerID, offerMessage(sess))
	return dto, nil
}

func (u *Usecase) RejectTerms(ctx context.Context, actorID, requestID string) (*SessionDTO, error) {
	sess, err := u.sessions.Take(requestID, func(s negotiation.Session) error {
		if s.BorrowerID != actorID {
			return loan.ErrNotBorrower
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("loan request rejected", zap.String("request_id", requestID))

	dto := &SessionDTO{Session: sess}
	dto.Message = "loan request rejected"
	u.notify(ctx, &dto.Notice, sess.LenderID, fmt.Sprintf(
		"%s rejected your terms for request %s.", sess.BorrowerID, sess.RequestID))
	return dto, nil
}

func offerMessage(s negotiation.Session) string {
	msg := fmt.Sprintf("%s offers %d coins at %d%% interest. Repay %d coins within %d day(s)",
		s.LenderID, s.Amount, s.InterestRate, s.TotalToPay, s.TermDays)
	if s.Installments > 0 {
		msg += fmt.Sprintf(" in %d installments of %d", s.Installments,
			loan.InstallmentAmount(s.TotalToPay, s.Installments))
	}
	return msg + fmt.Sprintf(". Accept or reject request %s.", s.RequestID)
}
