package history

import (
	"time"

	"lending-engine/internal/domain/loan"
)

type Role string

const (
	RoleLender   Role = "lender"
	RoleBorrower Role = "borrower"
)

// Entry is one line of a user's append-only loan history.
type Entry struct {
	ID        uint64      `gorm:"primaryKey;column:id" json:"-"`
	LoanID    string      `gorm:"size:32;not null;index:idx_history_loan" json:"loan_id"`
	UserID    string      `gorm:"size:64;not null;index:idx_history_user" json:"user_id"`
	Role      Role        `gorm:"size:16;not null" json:"role"`
	Amount    int64       `gorm:"not null" json:"amount"`
	Status    loan.Status `gorm:"size:16;not null" json:"status"`
	Date      time.Time   `gorm:"not null" json:"date"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Entry) TableName() string { return "loan_history_entries" }
