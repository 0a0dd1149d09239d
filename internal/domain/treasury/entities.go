package treasury

import "time"

const (
	CentralVault = "central"
	// Party name used in ledger entries for money moving to or from the vault.
	Party = "treasury"
)

type Vault struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Name      string    `gorm:"size:32;not null;uniqueIndex:ux_vaults_name" json:"name"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vault) TableName() string { return "vaults" }
