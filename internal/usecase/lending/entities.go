package lending

import (
	"time"

	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/usecase/negotiation"
)

// Notice is the user-facing outcome of an operation. Warnings carry soft
// failures, such as an undelivered notification, that did not stop it.
type Notice struct {
	Message  string   `json:"-"`
	Warnings []string `json:"-"`
}

func (n *Notice) Outcome() Notice { return *n }

func (n *Notice) warn(err error) { n.Warnings = append(n.Warnings, err.Error()) }

type InitiateInput struct {
	BorrowerID string
	LenderID   string
	Amount     int64
}

type TermsInput struct {
	ActorID      string
	RequestID    string
	InterestRate int
	TermDays     int
	Installments int
}

type SessionDTO struct {
	Notice
	negotiation.Session
}

type LoanDTO struct {
	Notice
	LoanID           string      `json:"loan_id"`
	Kind             loan.Kind   `json:"kind"`
	BorrowerID       string      `json:"borrower_id"`
	LenderID         string      `json:"lender_id,omitempty"`
	Principal        int64       `json:"principal"`
	TotalToPay       int64       `json:"total_to_pay"`
	AmountPaid       int64       `json:"amount_paid"`
	Remaining        int64       `json:"remaining"`
	InterestRate     int         `json:"interest_rate"`
	Deadline         time.Time   `json:"deadline"`
	Status           loan.Status `json:"status"`
	Active           bool        `json:"active"`
	Installments     int         `json:"installments"`
	InstallmentsPaid int         `json:"installments_paid"`
	InstallmentDue   int64       `json:"installment_due,omitempty"`
	IsDirty          bool        `json:"is_dirty,omitempty"`
	Penalized        bool        `json:"penalized,omitempty"`
}

type PaymentDTO struct {
	Notice
	Paid        int64   `json:"paid"`
	Settled     bool    `json:"settled"`
	CreditScore int     `json:"credit_score"`
	Loan        LoanDTO `json:"loan"`
}

type ReminderDTO struct {
	Notice
	LoanID    string    `json:"loan_id"`
	Remaining int64     `json:"remaining"`
	Deadline  time.Time `json:"deadline"`
	Delivered bool      `json:"delivered"`
}

type LimitDTO struct {
	Notice
	UserID       string `json:"user_id"`
	Limit        int64  `json:"limit"`
	BankCapacity int64  `json:"bank_capacity"`
	NetWorth     int64  `json:"net_worth"`
	CreditScore  int    `json:"credit_score"`
	Dirty        bool   `json:"dirty"`
}

type StatusDTO struct {
	Notice
	UserID      string                `json:"user_id"`
	Wallet      int64                 `json:"wallet"`
	Bank        int64                 `json:"bank"`
	CreditScore int                   `json:"credit_score"`
	JobTier     string                `json:"job_tier"`
	CreditLimit int64                 `json:"credit_limit"`
	Loan        *LoanDTO              `json:"loan,omitempty"`
	History     []history.Entry       `json:"history"`
	Sessions    []negotiation.Session `json:"sessions"`
}

type VaultDTO struct {
	Notice
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// historyLimit caps the entries returned by QueryStatus.
const historyLimit = 10

func toLoanDTO(now time.Time, l *loan.Loan) LoanDTO {
	dto := LoanDTO{
		LoanID:           l.LoanID,
		Kind:             l.Kind,
		BorrowerID:       l.BorrowerID,
		LenderID:         l.LenderID,
		Principal:        l.Principal,
		TotalToPay:       l.TotalToPay,
		AmountPaid:       l.AmountPaid,
		Remaining:        l.Remaining(),
		InterestRate:     l.InterestRate,
		Deadline:         l.Deadline,
		Status:           loan.EffectiveStatus(now, l),
		Active:           l.Active,
		Installments:     l.Installments,
		InstallmentsPaid: l.InstallmentsPaid,
		IsDirty:          loan.Dirty(now, l),
		Penalized:        l.PenalizedAt != nil,
	}
	if l.Installments > 0 && l.Active {
		dto.InstallmentDue = min(loan.InstallmentAmount(l.TotalToPay, l.Installments), l.Remaining())
	}
	return dto
}
