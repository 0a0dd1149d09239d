package lending

import (
	"context"

	"lending-engine/internal/domain/loan"
)

// QueryStatus reports balances, score, the active loan and open requests
// of userID. Reading it also persists an overdue transition.
func (u *Usecase) QueryStatus(ctx context.Context, userID string) (*StatusDTO, error) {
	who, err := u.identities.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, loan.ErrIdentityNotFound
		}
		return nil, err
	}
	active, err := u.activeLoan(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := u.history.ListByUserID(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	dto := &StatusDTO{
		UserID:      who.UserID,
		Wallet:      who.Wallet,
		Bank:        who.Bank,
		CreditScore: who.CreditScore,
		JobTier:     who.JobTier,
		CreditLimit: u.limitFor(who, active).Limit,
		History:     entries,
		Sessions:    u.sessions.ListForUser(userID),
	}
	if active != nil {
		l := toLoanDTO(u.now(), active)
		dto.Loan = &l
		dto.Message = "you have an active loan"
		if l.Status == loan.StatusOverdue {
			dto.Message = "your loan is overdue"
		}
	} else {
		dto.Message = "you have no active loan"
	}
	return dto, nil
}
