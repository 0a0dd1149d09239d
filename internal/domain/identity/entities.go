package identity

import (
	"time"
)

const (
	DefaultCreditScore = 500
	DefaultJobTier     = "unemployed"
)

// Identity is the per-user financial record of the economy.
type Identity struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID      string    `gorm:"size:64;not null;uniqueIndex:ux_identities_user_id" json:"user_id"`
	Wallet      int64     `gorm:"not null;default:0" json:"wallet"`
	Bank        int64     `gorm:"not null;default:0" json:"bank"`
	CreditScore int       `gorm:"not null;default:500" json:"credit_score"`
	JobTier     string    `gorm:"size:32;not null;default:'unemployed'" json:"job_tier"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Identity) TableName() string { return "identities" }

func New(userID string) *Identity {
	return &Identity{UserID: userID, CreditScore: DefaultCreditScore, JobTier: DefaultJobTier}
}

func (i *Identity) NetWorth() int64 { return i.Wallet + i.Bank }

// Debit takes amount from the wallet first and the bank for the rest.
// It reports false and leaves balances untouched when both cannot cover it.
func (i *Identity) Debit(amount int64) bool {
	if amount < 0 || i.NetWorth() < amount {
		return false
	}
	fromWallet := min(amount, max(i.Wallet, 0))
	i.Wallet -= fromWallet
	i.Bank -= amount - fromWallet
	return true
}
