package mysql

import (
	"context"

	eventDomain "nftlend-backend/internal/domain/loanevent"

	"gorm.io/gorm"
)

type LoanEventRepository struct{ db *gorm.DB }

func NewLoanEventRepository(db *gorm.DB) *LoanEventRepository {
	return &LoanEventRepository{db: db}
}

func (r *LoanEventRepository) Create(ctx context.Context, e *eventDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *LoanEventRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]eventDomain.Event, error) {
	var out []eventDomain.Event
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanEventRepository) List(ctx context.Context, loanID *uint64, limit, offset int) ([]eventDomain.Event, error) {
	q := r.db.WithContext(ctx).Model(&eventDomain.Event{})
	if loanID != nil {
		q = q.Where("loan_id = ?", *loanID)
	}
	var out []eventDomain.Event
	res := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out)
	return out, res.Error
}
