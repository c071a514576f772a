package loanevent

import "context"

type Repository interface {
	// Create appends one record. There is no update or delete.
	Create(ctx context.Context, e *Event) error
	// ListByLoanID returns the full history for one loan, most recent first.
	ListByLoanID(ctx context.Context, loanID uint64) ([]Event, error)
	// List pages global history, optionally filtered to one loan.
	List(ctx context.Context, loanID *uint64, limit, offset int) ([]Event, error)
}
