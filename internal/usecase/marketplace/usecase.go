package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	loanDomain "nftlend-backend/internal/domain/loan"
	"nftlend-backend/internal/domain/loanevent"

	"gorm.io/gorm"
)

// Server-side cap on list results, regardless of the requested limit.
const maxListLimit = 100

const recentWindow = 30 * 24 * time.Hour

// Usecase is the read-only marketplace view over loans and their events.
// It performs no writes.
type Usecase struct {
	loans  loanDomain.Repository
	events loanevent.Repository
}

func NewUsecase(loans loanDomain.Repository, events loanevent.Repository) *Usecase {
	return &Usecase{loans: loans, events: events}
}

func derive(l *loanDomain.Loan, now time.Time) Derived {
	d := Derived{IsOverdue: l.Overdue(now)}

	if l.TotalRepaymentAmount != nil {
		d.TotalRepayment = *l.TotalRepaymentAmount
	} else {
		d.TotalRepayment = loanDomain.TotalRepaymentFor(l.PrincipalAmount, l.InterestRate, l.DurationDays)
		d.RepaymentEstimated = true
	}
	d.InterestAmount = d.TotalRepayment.Sub(l.PrincipalAmount)

	if l.DueAt != nil && l.DueAt.After(now) {
		d.DaysRemaining = int(l.DueAt.Sub(now).Hours() / 24)
	}
	return d
}

func (u *Usecase) List(ctx context.Context, f ListFilter, limit int) ([]LoanView, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	var df loanDomain.Filter
	if f.Status != nil {
		st := loanDomain.Status(*f.Status)
		switch st {
		case loanDomain.StatusListed, loanDomain.StatusFunded, loanDomain.StatusActive,
			loanDomain.StatusRepaid, loanDomain.StatusLiquidated, loanDomain.StatusCancelled:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", loanDomain.ErrValidation, *f.Status)
		}
		df.Status = &st
	}
	df.Chain = f.Chain
	df.Borrower = f.Borrower
	df.Lender = f.Lender

	loans, err := u.loans.List(ctx, df, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]LoanView, 0, len(loans))
	for i := range loans {
		out = append(out, LoanView{Loan: loans[i], Derived: derive(&loans[i], now)})
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDetail, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", loanDomain.ErrNotFound, loanID)
		}
		return nil, err
	}

	events, err := u.events.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &LoanDetail{
		LoanView: LoanView{Loan: *l, Derived: derive(l, now)},
		Events:   events,
	}, nil
}

// Events queries the audit log on its own, outside any loan view. A nil
// loanID pages the global history; otherwise the history of that loan.
func (u *Usecase) Events(ctx context.Context, loanID *string, limit, offset int) ([]loanevent.Event, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var scope *uint64
	if loanID != nil {
		l, err := u.loans.GetByLoanID(ctx, *loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", loanDomain.ErrNotFound, *loanID)
			}
			return nil, err
		}
		scope = &l.ID
	}
	return u.events.List(ctx, scope, limit, offset)
}

func (u *Usecase) Statistics(ctx context.Context) (*Stats, error) {
	now := time.Now().UTC()

	agg, err := u.loans.Aggregate(ctx, now.Add(-recentWindow), now)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.loans.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int64, 6)
	for _, st := range []loanDomain.Status{
		loanDomain.StatusListed, loanDomain.StatusFunded, loanDomain.StatusActive,
		loanDomain.StatusRepaid, loanDomain.StatusLiquidated, loanDomain.StatusCancelled,
	} {
		breakdown[string(st)] = byStatus[st]
	}

	return &Stats{
		TotalLoans:      agg.TotalLoans,
		ActiveLoans:     agg.ActiveLoans,
		TotalVolume:     agg.TotalVolume,
		AverageAPY:      agg.AverageAPY,
		OverdueLoans:    agg.OverdueLoans,
		RecentLoans:     agg.RecentLoans,
		RecentVolume:    agg.RecentVolume,
		StatusBreakdown: breakdown,
	}, nil
}
