package mysql

import (
	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/ledger"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/treasury"

	"gorm.io/gorm"
)

const treasuryVaultName = treasury.CentralVault

// Migrate creates or updates every table the engine owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&identity.Identity{},
		&loan.Loan{},
		&history.Entry{},
		&treasury.Vault{},
		&ledger.Entry{},
	)
}
