package uow

import (
	"context"

	"nftlend-backend/internal/domain/escrow"
	"nftlend-backend/internal/domain/loan"
	"nftlend-backend/internal/domain/loanevent"
)

type Repos struct {
	Loans  loan.Repository
	Events loanevent.Repository
	Escrow escrow.Repository
}

// UnitOfWork runs a loan mutation and its audit event as one atomic
// transaction: if fn returns an error nothing is visible afterwards.
type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
