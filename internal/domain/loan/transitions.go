package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Each state-machine edge is its own method: the method validates every
// guard for that edge and applies the mutation in one place. Callers never
// poke status or derived fields directly, so an invalid (from, operation)
// pair can only surface as a typed error from here.

// Fund moves a listed loan to funded. The lender, repayment total and due
// date are fixed at this instant and never recomputed.
func (l *Loan) Fund(lenderHandle, lenderWallet, txHash string, now time.Time) error {
	if l.Status != StatusListed {
		return fmt.Errorf("%w: loan is %s, only listed loans can be funded", ErrInvalidState, l.Status)
	}
	if lenderHandle == l.BorrowerHandle {
		return fmt.Errorf("%w: borrower cannot fund their own loan", ErrUnauthorized)
	}

	total := TotalRepaymentFor(l.PrincipalAmount, l.InterestRate, l.DurationDays)
	due := now.AddDate(0, 0, l.DurationDays)

	l.LenderHandle = &lenderHandle
	l.LenderWallet = &lenderWallet
	l.TotalRepaymentAmount = &total
	l.DueAt = &due
	l.FundingTxHash = &txHash
	l.FundedAt = &now
	l.StartedAt = &now
	l.Status = StatusFunded
	return nil
}

// ApplyRepayment applies one borrower payment against the outstanding debt.
// It returns the remaining debt after the payment and whether the loan is
// now fully repaid. Overpayment is rejected before any mutation.
func (l *Loan) ApplyRepayment(actorHandle string, amount decimal.Decimal, txHash string, now time.Time) (remaining decimal.Decimal, full bool, err error) {
	if l.Status != StatusFunded && l.Status != StatusActive {
		return decimal.Zero, false, fmt.Errorf("%w: loan is %s, only funded or active loans can be repaid", ErrInvalidState, l.Status)
	}
	if actorHandle != l.BorrowerHandle {
		return decimal.Zero, false, fmt.Errorf("%w: only the borrower can repay this loan", ErrUnauthorized)
	}
	if !amount.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("%w: repayment amount must be positive", ErrValidation)
	}

	owed := l.RemainingDebt()
	if amount.GreaterThan(owed) {
		return decimal.Zero, false, fmt.Errorf("%w: repayment amount exceeds remaining debt", ErrValidation)
	}

	l.AmountRepaid = l.AmountRepaid.Add(amount)
	remaining = l.RemainingDebt()

	if l.AmountRepaid.GreaterThanOrEqual(*l.TotalRepaymentAmount) {
		l.Status = StatusRepaid
		l.RepaymentTxHash = &txHash
		l.CompletedAt = &now
		return remaining, true, nil
	}
	l.Status = StatusActive
	return remaining, false, nil
}

// Liquidate seizes the collateral reference after maturity. Liquidation
// before the due date is always rejected, regardless of actor.
func (l *Loan) Liquidate(actorHandle, txHash string, now time.Time) (daysOverdue int, err error) {
	if l.Status != StatusFunded && l.Status != StatusActive {
		return 0, fmt.Errorf("%w: loan is %s, only funded or active loans can be liquidated", ErrInvalidState, l.Status)
	}
	if l.LenderHandle == nil || actorHandle != *l.LenderHandle {
		return 0, fmt.Errorf("%w: only the lender can liquidate this loan", ErrUnauthorized)
	}
	if l.DueAt == nil || !now.After(*l.DueAt) {
		return 0, fmt.Errorf("%w: loan is not overdue yet", ErrInvalidState)
	}

	daysOverdue = int(now.Sub(*l.DueAt).Hours() / 24)
	l.LiquidationTxHash = &txHash
	l.CompletedAt = &now
	l.Status = StatusLiquidated
	return daysOverdue, nil
}

// Cancel withdraws a listing. Valid only while listed, never after funding.
func (l *Loan) Cancel(actorHandle string, now time.Time) error {
	if l.Status != StatusListed {
		return fmt.Errorf("%w: loan is %s, only listed loans can be cancelled", ErrInvalidState, l.Status)
	}
	if actorHandle != l.BorrowerHandle {
		return fmt.Errorf("%w: only the borrower can cancel this loan", ErrUnauthorized)
	}
	l.CompletedAt = &now
	l.Status = StatusCancelled
	return nil
}
