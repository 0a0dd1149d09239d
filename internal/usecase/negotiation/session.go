// Package negotiation owns the transient state of peer loan offers that
// have not been funded yet.
package negotiation

import "time"

type Status string

const (
	StatusPendingTerms      Status = "pending_terms"
	StatusPendingAcceptance Status = "pending_acceptance"
)

type Session struct {
	RequestID    string    `json:"request_id"`
	BorrowerID   string    `json:"borrower_id"`
	LenderID     string    `json:"lender_id"`
	Amount       int64     `json:"amount"`
	Status       Status    `json:"status"`
	InterestRate int       `json:"interest_rate"`
	TermDays     int       `json:"term_days"`
	Installments int       `json:"installments"`
	TotalToPay   int64     `json:"total_to_pay"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
