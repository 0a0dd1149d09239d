package mysql

import (
	"context"

	treasuryDomain "lending-engine/internal/domain/treasury"

	"gorm.io/gorm"
)

type TreasuryRepository struct {
	db   *gorm.DB
	name string
}

func NewTreasuryRepository(db *gorm.DB) *TreasuryRepository {
	return &TreasuryRepository{db: db, name: treasuryDomain.CentralVault}
}

// EnsureVault creates the vault row with seed when it does not exist yet.
func (r *TreasuryRepository) EnsureVault(ctx context.Context, seed int64) (*treasuryDomain.Vault, error) {
	var out treasuryDomain.Vault
	res := r.db.WithContext(ctx).
		Attrs(treasuryDomain.Vault{Balance: seed}).
		FirstOrCreate(&out, treasuryDomain.Vault{Name: r.name})
	return &out, res.Error
}

func (r *TreasuryRepository) Get(ctx context.Context) (*treasuryDomain.Vault, error) {
	var out treasuryDomain.Vault
	res := r.db.WithContext(ctx).Where("name = ?", r.name).First(&out)
	return &out, res.Error
}

func (r *TreasuryRepository) Add(ctx context.Context, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&treasuryDomain.Vault{}).
		Where("name = ?", r.name).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TreasuryRepository) Remove(ctx context.Context, amount int64) (bool, error) {
	// conditional update: no partial withdrawal
	res := r.db.WithContext(ctx).
		Model(&treasuryDomain.Vault{}).
		Where("name = ? AND balance >= ?", r.name, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
