package marketplace

import (
	loanDomain "nftlend-backend/internal/domain/loan"
	"nftlend-backend/internal/domain/loanevent"

	"github.com/shopspring/decimal"
)

type ListFilter struct {
	Status   *string
	Chain    *string
	Borrower *string
	Lender   *string
}

// Derived holds display fields computed at query time, never persisted.
type Derived struct {
	// Persisted total once funded; otherwise a preview computed from the
	// current terms, flagged by RepaymentEstimated.
	TotalRepayment     decimal.Decimal `json:"total_repayment_amount"`
	RepaymentEstimated bool            `json:"repayment_estimated"`
	InterestAmount     decimal.Decimal `json:"interest_amount"`
	DaysRemaining      int             `json:"days_remaining"`
	IsOverdue          bool            `json:"is_overdue"`
}

type LoanView struct {
	loanDomain.Loan
	Derived Derived `json:"derived"`
}

type LoanDetail struct {
	LoanView
	Events []loanevent.Event `json:"events"`
}

type Stats struct {
	TotalLoans      int64            `json:"total_loans"`
	ActiveLoans     int64            `json:"active_loans"`
	TotalVolume     decimal.Decimal  `json:"total_volume"`
	AverageAPY      decimal.Decimal  `json:"average_apy"`
	OverdueLoans    int64            `json:"overdue_loans"`
	RecentLoans     int64            `json:"recent_loans"`
	RecentVolume    decimal.Decimal  `json:"recent_volume"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
}
