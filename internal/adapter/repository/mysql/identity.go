package mysql

import (
	"context"

	identityDomain "lending-engine/internal/domain/identity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdentityRepository struct{ db *gorm.DB }

func NewIdentityRepository(db *gorm.DB) *IdentityRepository { return &IdentityRepository{db: db} }

func (r *IdentityRepository) GetByUserID(ctx context.Context, userID string) (*identityDomain.Identity, error) {
	var out identityDomain.Identity
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	return &out, res.Error
}

func (r *IdentityRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*identityDomain.Identity, error) {
	var out identityDomain.Identity
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out)
	return &out, res.Error
}

func (r *IdentityRepository) GetOrCreate(ctx context.Context, userID string) (*identityDomain.Identity, error) {
	var out identityDomain.Identity
	res := r.db.WithContext(ctx).
		Where(identityDomain.Identity{UserID: userID}).
		Attrs(identityDomain.Identity{
			CreditScore: identityDomain.DefaultCreditScore,
			JobTier:     identityDomain.DefaultJobTier,
		}).
		FirstOrCreate(&out)
	return &out, res.Error
}

func (r *IdentityRepository) Save(ctx context.Context, i *identityDomain.Identity) error {
	return r.db.WithContext(ctx).Save(i).Error
}
