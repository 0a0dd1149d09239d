package loan

import (
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusForgiven Status = "forgiven"
)

// Kind tags the loan variant. Peer loans carry a LenderID, treasury loans
// carry IsDirty instead.
type Kind string

const (
	KindPeer     Kind = "peer"
	KindTreasury Kind = "treasury"
)

const (
	TreasuryInterestRate = 10
	TreasuryTermDays     = 7

	MaxInterestRate = 100
	MinTermDays     = 1
	MaxTermDays     = 7
	MaxInstallments = 8

	// MaxAmount bounds every principal and payment so that twice the
	// amount still fits in int64.
	MaxAmount int64 = 1_000_000_000_000
)

type Loan struct {
	ID               uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID           string     `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	Kind             Kind       `gorm:"size:16;not null" json:"kind"`
	BorrowerID       string     `gorm:"size:64;index:idx_loans_borrower" json:"borrower_id"`
	LenderID         string     `gorm:"size:64;index:idx_loans_lender" json:"lender_id,omitempty"`
	Principal        int64      `gorm:"not null" json:"principal"`
	TotalToPay       int64      `gorm:"not null" json:"total_to_pay"`
	AmountPaid       int64      `gorm:"not null;default:0" json:"amount_paid"`
	InterestRate     int        `gorm:"not null" json:"interest_rate"`
	Deadline         time.Time  `gorm:"not null" json:"deadline"`
	Status           Status     `gorm:"size:16;not null;default:'active'" json:"status"`
	Active           bool       `gorm:"not null" json:"active"`
	ActiveKey        *string    `gorm:"size:64;uniqueIndex:ux_loans_active_borrower" json:"-"`
	Installments     int        `gorm:"not null;default:0" json:"installments"`
	InstallmentsPaid int        `gorm:"not null;default:0" json:"installments_paid"`
	IsDirty          bool       `gorm:"not null;default:false" json:"is_dirty,omitempty"`
	PenalizedAt      *time.Time `json:"penalized_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Counterparty is the funding side of a loan.
type Counterparty interface{ isCounterparty() }

type PeerLender struct{ UserID string }

type Treasury struct{ Dirty bool }

func (PeerLender) isCounterparty() {}
func (Treasury) isCounterparty()   {}

func (l *Loan) Counterparty() Counterparty {
	if l.Kind == KindTreasury {
		return Treasury{Dirty: l.IsDirty}
	}
	return PeerLender{UserID: l.LenderID}
}

func (l *Loan) Remaining() int64 {
	if r := l.TotalToPay - l.AmountPaid; r > 0 {
		return r
	}
	return 0
}

// Open marks the record as the borrower's single active loan.
func (l *Loan) Open() {
	key := l.BorrowerID
	l.Active = true
	l.ActiveKey = &key
	l.Status = StatusActive
}

// Close ends the loan with a terminal status. The row itself is kept.
func (l *Loan) Close(s Status) {
	l.Active = false
	l.ActiveKey = nil
	l.Status = s
}

// Settled reports whether the payment state forces the loan to paid.
func (l *Loan) Settled() bool {
	if l.AmountPaid >= l.TotalToPay {
		return true
	}
	return l.Installments > 0 && l.InstallmentsPaid >= l.Installments
}
