package ledger

import "time"

type Kind string

const (
	KindDisbursement         Kind = "disbursement"
	KindRepayment            Kind = "repayment"
	KindTreasuryDisbursement Kind = "treasury_disbursement"
	KindTreasuryRepayment    Kind = "treasury_repayment"
)

// Entry records one money movement. Rows are never updated.
type Entry struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	EntryID   string    `gorm:"size:32;not null;uniqueIndex:ux_ledger_entry_id" json:"entry_id"`
	LoanID    string    `gorm:"size:32;not null;index:idx_ledger_loan" json:"loan_id"`
	Kind      Kind      `gorm:"size:32;not null" json:"kind"`
	FromParty string    `gorm:"size:64;not null" json:"from"`
	ToParty   string    `gorm:"size:64;not null" json:"to"`
	Amount    int64     `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "ledger_entries" }
