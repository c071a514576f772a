package mysql

import (
	"context"
	"fmt"
	"time"

	loanDomain "nftlend-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate takes a row lock held until the surrounding tx ends.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.Filter, limit int) ([]loanDomain.Loan, error) {
	q := r.db.WithContext(ctx).Model(&loanDomain.Loan{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Chain != nil {
		q = q.Where("chain = ?", *f.Chain)
	}
	if f.Borrower != nil {
		q = q.Where("borrower_handle = ?", *f.Borrower)
	}
	if f.Lender != nil {
		q = q.Where("lender_handle = ?", *f.Lender)
	}
	var out []loanDomain.Loan
	res := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out)
	return out, res.Error
}

// UpdateWithStatus writes every column of l, but only if the stored row
// still carries the expected status. Zero rows affected means another
// transition won the race; the caller gets ErrConflict and must not write
// an event.
func (r *LoanRepository) UpdateWithStatus(ctx context.Context, l *loanDomain.Loan, expected loanDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("id = ? AND status = ?", l.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(l)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: loan %s is no longer %s", loanDomain.ErrConflict, l.LoanID, expected)
	}
	return nil
}

func (r *LoanRepository) CountByStatus(ctx context.Context) (map[loanDomain.Status]int64, error) {
	var rows []struct {
		Status loanDomain.Status
		N      int64
	}
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make(map[loanDomain.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *LoanRepository) Aggregate(ctx context.Context, since, now time.Time) (*loanDomain.Stats, error) {
	s := &loanDomain.Stats{
		TotalVolume:  decimal.Zero,
		AverageAPY:   decimal.Zero,
		RecentVolume: decimal.Zero,
	}

	if err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Count(&s.TotalLoans).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("status NOT IN ?", []loanDomain.Status{
			loanDomain.StatusRepaid, loanDomain.StatusLiquidated, loanDomain.StatusCancelled,
		}).
		Count(&s.ActiveLoans).Error; err != nil {
		return nil, err
	}

	var totals struct {
		Volume  decimal.Decimal
		AvgRate decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Select("COALESCE(SUM(principal_amount), 0) AS volume, COALESCE(AVG(interest_rate), 0) AS avg_rate").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	s.TotalVolume = totals.Volume
	s.AverageAPY = totals.AvgRate

	if err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("status IN ? AND due_at < ?",
			[]loanDomain.Status{loanDomain.StatusFunded, loanDomain.StatusActive}, now).
		Count(&s.OverdueLoans).Error; err != nil {
		return nil, err
	}

	var recent struct {
		N      int64
		Volume decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Select("COUNT(*) AS n, COALESCE(SUM(principal_amount), 0) AS volume").
		Where("created_at >= ?", since).
		Scan(&recent).Error; err != nil {
		return nil, err
	}
	s.RecentLoans = recent.N
	s.RecentVolume = recent.Volume

	return s, nil
}
