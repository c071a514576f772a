package loan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	loanDomain "nftlend-backend/internal/domain/loan"
	"nftlend-backend/internal/domain/loanevent"
	"nftlend-backend/internal/domain/uow"
	"nftlend-backend/internal/observability"
	escrowuc "nftlend-backend/internal/usecase/escrow"
	"nftlend-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	minInterestRate = decimal.NewFromFloat(0.1)
	maxInterestRate = decimal.NewFromInt(100)
)

const (
	minDurationDays = 1
	maxDurationDays = 365
)

// Usecase is the loan ledger: every operation runs its read-validate-write
// sequence and its event append as one transaction. The only external call
// is the escrow lookup during Create.
type Usecase struct {
	uow       uow.UnitOfWork
	allocator *escrowuc.Allocator
	metrics   *observability.Metrics
}

func NewUsecase(tx uow.UnitOfWork, alloc *escrowuc.Allocator) *Usecase {
	return &Usecase{uow: tx, allocator: alloc}
}

func (u *Usecase) WithMetrics(m *observability.Metrics) *Usecase {
	u.metrics = m
	return u
}

func (u *Usecase) observe(op string, start time.Time, err error) {
	if u.metrics == nil {
		return
	}
	u.metrics.TransitionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		u.metrics.TransitionsRejected.WithLabelValues(op, loanDomain.ErrorKind(err)).Inc()
		return
	}
	u.metrics.TransitionsApplied.WithLabelValues(op).Inc()
}

func validateTerms(actor Actor, in CreateLoanInput) error {
	if actor.Handle == "" || actor.Wallet == "" {
		return fmt.Errorf("%w: missing borrower identity", loanDomain.ErrValidation)
	}
	if in.Chain == "" || in.PrincipalToken == "" {
		return fmt.Errorf("%w: chain and principal token are required", loanDomain.ErrValidation)
	}
	if !in.PrincipalAmount.IsPositive() {
		return fmt.Errorf("%w: principal amount must be positive", loanDomain.ErrValidation)
	}
	if in.InterestRate.LessThan(minInterestRate) || in.InterestRate.GreaterThan(maxInterestRate) {
		return fmt.Errorf("%w: interest rate must be between %s and %s", loanDomain.ErrValidation, minInterestRate, maxInterestRate)
	}
	if in.DurationDays < minDurationDays || in.DurationDays > maxDurationDays {
		return fmt.Errorf("%w: duration must be between %d and %d days", loanDomain.ErrValidation, minDurationDays, maxDurationDays)
	}
	if in.NftChain == "" || in.NftContract == "" || in.NftTokenID == "" {
		return fmt.Errorf("%w: collateral reference is incomplete", loanDomain.ErrValidation)
	}
	if in.NftEstimatedValue != nil && !in.NftEstimatedValue.IsPositive() {
		return fmt.Errorf("%w: estimated collateral value must be positive", loanDomain.ErrValidation)
	}
	return nil
}

func newEvent(l *loanDomain.Loan, t loanevent.Type, desc string, amount *decimal.Decimal, txHash *string, actorHandle string, payload map[string]any) (*loanevent.Event, error) {
	var data datatypes.JSON
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = datatypes.JSON(b)
	}
	return &loanevent.Event{
		LoanID:           l.ID,
		EventType:        t,
		EventDescription: desc,
		Amount:           amount,
		TransactionHash:  txHash,
		UserHandle:       actorHandle,
		EventData:        data,
	}, nil
}

// Create lists a new loan offer. No funds move; the escrow wallet is a
// custody reference reserved for the loan's lifetime.
func (u *Usecase) Create(ctx context.Context, actor Actor, in CreateLoanInput) (dto *LoanDTO, err error) {
	defer func(start time.Time) { u.observe("create", start, err) }(time.Now())

	if err = validateTerms(actor, in); err != nil {
		return nil, err
	}

	wallet, err := u.allocator.Allocate(ctx, in.NftChain)
	if err != nil {
		return nil, err
	}

	l := &loanDomain.Loan{
		LoanID:               id.NewID32(),
		BorrowerHandle:       actor.Handle,
		BorrowerWallet:       actor.Wallet,
		Chain:                in.Chain,
		PrincipalToken:       in.PrincipalToken,
		PrincipalAmount:      in.PrincipalAmount,
		InterestRate:         in.InterestRate,
		DurationDays:         in.DurationDays,
		OriginationFeePct:    loanDomain.OriginationFeePct,
		OriginationFeeAmount: loanDomain.OriginationFeeFor(in.PrincipalAmount),
		NftChain:             in.NftChain,
		NftContract:          in.NftContract,
		NftTokenID:           in.NftTokenID,
		NftEstimatedValue:    in.NftEstimatedValue,
		Description:          in.Description,
		EscrowWalletID:       wallet.ID,
		AmountRepaid:         decimal.Zero,
		Status:               loanDomain.StatusListed,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		desc := fmt.Sprintf("Loan listed: %s %s at %s%% for %d days",
			l.PrincipalAmount, l.PrincipalToken, l.InterestRate, l.DurationDays)
		ev, err := newEvent(l, loanevent.TypeListed, desc, &l.PrincipalAmount, nil, actor.Handle, map[string]any{
			"chain":            l.Chain,
			"duration_days":    l.DurationDays,
			"interest_rate":    l.InterestRate,
			"origination_fee":  l.OriginationFeeAmount,
			"escrow_wallet_id": l.EscrowWalletID,
		})
		if err != nil {
			return err
		}
		return r.Events.Create(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	return &LoanDTO{
		LoanID:               l.LoanID,
		BorrowerHandle:       l.BorrowerHandle,
		Status:               string(l.Status),
		Chain:                l.Chain,
		PrincipalToken:       l.PrincipalToken,
		PrincipalAmount:      l.PrincipalAmount,
		InterestRate:         l.InterestRate,
		DurationDays:         l.DurationDays,
		OriginationFeeAmount: l.OriginationFeeAmount,
		EscrowWalletID:       l.EscrowWalletID,
		CreatedAt:            l.CreatedAt,
	}, nil
}

// Fund moves a listed loan to funded. The repayment total and due date are
// derived here, once; the supplied tx hash is stored as an opaque reference.
func (u *Usecase) Fund(ctx context.Context, actor Actor, loanID, txHash string) (res *FundResult, err error) {
	defer func(start time.Time) { u.observe("fund", start, err) }(time.Now())

	if actor.Handle == "" || actor.Wallet == "" {
		return nil, fmt.Errorf("%w: missing lender identity", loanDomain.ErrValidation)
	}
	if txHash == "" {
		return nil, fmt.Errorf("%w: funding transaction hash is required", loanDomain.ErrValidation)
	}
	now := time.Now().UTC()

	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		prev := l.Status
		if err := l.Fund(actor.Handle, actor.Wallet, txHash, now); err != nil {
			return err
		}
		if err := r.Loans.UpdateWithStatus(ctx, l, prev); err != nil {
			return err
		}
		desc := fmt.Sprintf("Loan funded by %s: %s %s due by %s",
			actor.Handle, l.TotalRepaymentAmount, l.PrincipalToken, l.DueAt.Format(time.RFC3339))
		ev, err := newEvent(l, loanevent.TypeFunded, desc, &l.PrincipalAmount, &txHash, actor.Handle, map[string]any{
			"due_at":                 l.DueAt,
			"total_repayment_amount": l.TotalRepaymentAmount,
			"lender_handle":          actor.Handle,
		})
		if err != nil {
			return err
		}
		if err := r.Events.Create(ctx, ev); err != nil {
			return err
		}
		res = &FundResult{LoanID: l.LoanID, DueDate: *l.DueAt, TotalRepayment: *l.TotalRepaymentAmount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Repay applies a borrower payment; a payment covering the full remaining
// debt closes the loan.
func (u *Usecase) Repay(ctx context.Context, actor Actor, loanID string, amount decimal.Decimal, txHash string) (res *RepayResult, err error) {
	defer func(start time.Time) { u.observe("repay", start, err) }(time.Now())

	if txHash == "" {
		return nil, fmt.Errorf("%w: repayment transaction hash is required", loanDomain.ErrValidation)
	}
	now := time.Now().UTC()

	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		prev := l.Status
		remaining, full, err := l.ApplyRepayment(actor.Handle, amount, txHash, now)
		if err != nil {
			return err
		}
		if err := r.Loans.UpdateWithStatus(ctx, l, prev); err != nil {
			return err
		}

		evType := loanevent.TypePartialRepayment
		desc := fmt.Sprintf("Partial repayment of %s %s, %s remaining", amount, l.PrincipalToken, remaining)
		if full {
			evType = loanevent.TypeRepaid
			desc = fmt.Sprintf("Loan fully repaid: %s %s", l.AmountRepaid, l.PrincipalToken)
		}
		ev, err := newEvent(l, evType, desc, &amount, &txHash, actor.Handle, map[string]any{
			"amount_repaid":  l.AmountRepaid,
			"remaining_debt": remaining,
			"fully_repaid":   full,
		})
		if err != nil {
			return err
		}
		if err := r.Events.Create(ctx, ev); err != nil {
			return err
		}
		res = &RepayResult{LoanID: l.LoanID, AmountRepaid: l.AmountRepaid, RemainingDebt: remaining, IsFullyRepaid: full}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Liquidate lets the lender claim the collateral reference once the loan
// is past its due date.
func (u *Usecase) Liquidate(ctx context.Context, actor Actor, loanID, txHash string) (ack *Ack, err error) {
	defer func(start time.Time) { u.observe("liquidate", start, err) }(time.Now())

	if txHash == "" {
		return nil, fmt.Errorf("%w: liquidation transaction hash is required", loanDomain.ErrValidation)
	}
	now := time.Now().UTC()

	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		prev := l.Status
		daysOverdue, err := l.Liquidate(actor.Handle, txHash, now)
		if err != nil {
			return err
		}
		if err := r.Loans.UpdateWithStatus(ctx, l, prev); err != nil {
			return err
		}
		desc := fmt.Sprintf("Loan liquidated by %s, %d day(s) overdue", actor.Handle, daysOverdue)
		ev, err := newEvent(l, loanevent.TypeLiquidated, desc, l.TotalRepaymentAmount, &txHash, actor.Handle, map[string]any{
			"days_overdue":   daysOverdue,
			"due_at":         l.DueAt,
			"amount_repaid":  l.AmountRepaid,
			"remaining_debt": l.RemainingDebt(),
		})
		if err != nil {
			return err
		}
		if err := r.Events.Create(ctx, ev); err != nil {
			return err
		}
		ack = &Ack{LoanID: l.LoanID, Status: string(l.Status), CompletedAt: *l.CompletedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ack, nil
}

// Cancel withdraws a listing before it is funded.
func (u *Usecase) Cancel(ctx context.Context, actor Actor, loanID string) (ack *Ack, err error) {
	defer func(start time.Time) { u.observe("cancel", start, err) }(time.Now())

	now := time.Now().UTC()

	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.Loan) error {
		prev := l.Status
		if err := l.Cancel(actor.Handle, now); err != nil {
			return err
		}
		if err := r.Loans.UpdateWithStatus(ctx, l, prev); err != nil {
			return err
		}
		ev, err := newEvent(l, loanevent.TypeCancelled, "Listing cancelled by borrower", nil, nil, actor.Handle, nil)
		if err != nil {
			return err
		}
		if err := r.Events.Create(ctx, ev); err != nil {
			return err
		}
		ack = &Ack{LoanID: l.LoanID, Status: string(l.Status), CompletedAt: *l.CompletedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ack, nil
}
