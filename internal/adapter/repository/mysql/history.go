package mysql

import (
	"context"

	historyDomain "lending-engine/internal/domain/history"
	loanDomain "lending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, e *historyDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *HistoryRepository) MarkStatus(ctx context.Context, loanID string, status loanDomain.Status) error {
	return r.db.WithContext(ctx).
		Model(&historyDomain.Entry{}).
		Where("loan_id = ?", loanID).
		Update("status", status).Error
}

func (r *HistoryRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]historyDomain.Entry, error) {
	var out []historyDomain.Entry
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
