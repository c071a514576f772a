package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Filter narrows List results; nil fields are not applied.
type Filter struct {
	Status   *Status
	Chain    *string
	Borrower *string
	Lender   *string
}

// Stats aggregates the marketplace-wide numbers in one shot.
type Stats struct {
	TotalLoans   int64
	ActiveLoans  int64 // non-terminal
	TotalVolume  decimal.Decimal
	AverageAPY   decimal.Decimal
	OverdueLoans int64
	RecentLoans  int64 // created in the trailing window
	RecentVolume decimal.Decimal
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the row for the duration of the enclosing tx.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	List(ctx context.Context, f Filter, limit int) ([]Loan, error)
	// UpdateWithStatus persists l only if the stored row still has the
	// expected status; a stale expectation surfaces as ErrConflict.
	UpdateWithStatus(ctx context.Context, l *Loan, expected Status) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	// Aggregate computes Stats; since bounds the trailing window, now is
	// the overdue cutoff (both passed in so the repository stays clock-free).
	Aggregate(ctx context.Context, since, now time.Time) (*Stats, error)
}
