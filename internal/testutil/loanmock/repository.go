package loanmock

import (
	"context"
	"errors"
	"time"

	domain "nftlend-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields a test needs; unfilled ones fail loudly.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListFn                 func(ctx context.Context, f domain.Filter, limit int) ([]domain.Loan, error)
	UpdateWithStatusFn     func(ctx context.Context, l *domain.Loan, expected domain.Status) error
	CountByStatusFn        func(ctx context.Context) (map[domain.Status]int64, error)
	AggregateFn            func(ctx context.Context, since, now time.Time) (*domain.Stats, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, f domain.Filter, limit int) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f, limit)
	}
	return nil, errUnimplemented
}

func (m *Repo) UpdateWithStatus(ctx context.Context, l *domain.Loan, expected domain.Status) error {
	if m.UpdateWithStatusFn != nil {
		return m.UpdateWithStatusFn(ctx, l, expected)
	}
	return nil
}

func (m *Repo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) Aggregate(ctx context.Context, since, now time.Time) (*domain.Stats, error) {
	if m.AggregateFn != nil {
		return m.AggregateFn(ctx, since, now)
	}
	return nil, errUnimplemented
}
