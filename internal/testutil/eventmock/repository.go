package eventmock

import (
	"context"
	"errors"

	domain "nftlend-backend/internal/domain/loanevent"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("eventmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn       func(ctx context.Context, e *domain.Event) error
	ListByLoanIDFn func(ctx context.Context, loanID uint64) ([]domain.Event, error)
	ListFn         func(ctx context.Context, loanID *uint64, limit, offset int) ([]domain.Event, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Event) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]domain.Event, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, loanID *uint64, limit, offset int) ([]domain.Event, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, loanID, limit, offset)
	}
	return nil, errUnimplemented
}
