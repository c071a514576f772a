package loan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	escrowDomain "nftlend-backend/internal/domain/escrow"
	domain "nftlend-backend/internal/domain/loan"
	"nftlend-backend/internal/domain/loanevent"
	"nftlend-backend/internal/domain/uow"
	"nftlend-backend/internal/testutil/escrowmock"
	"nftlend-backend/internal/testutil/eventmock"
	"nftlend-backend/internal/testutil/loanmock"
	"nftlend-backend/internal/testutil/uowmock"
	escrowuc "nftlend-backend/internal/usecase/escrow"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	borrower = Actor{Handle: "alice", Wallet: "0xAlice"}
	lender   = Actor{Handle: "bob", Wallet: "0xBob"}
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// harness wires the usecase against function-backed mocks and captures
// every write the transaction performs.
type harness struct {
	uc            *Usecase
	loan          *domain.Loan // row the locked lookup returns
	events        []loanevent.Event
	saved         *domain.Loan
	savedExpected domain.Status
	allocations   int
}

func newHarness(l *domain.Loan) *harness {
	h := &harness{loan: l}

	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, nl *domain.Loan) error {
			nl.ID = 42
			nl.CreatedAt = time.Now().UTC()
			h.saved = nl
			return nil
		},
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domain.Loan, error) {
			if h.loan == nil || h.loan.LoanID != loanID {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, loanID)
			}
			cp := *h.loan
			return &cp, nil
		},
		UpdateWithStatusFn: func(ctx context.Context, nl *domain.Loan, expected domain.Status) error {
			h.saved = nl
			h.savedExpected = expected
			return nil
		},
	}
	events := &eventmock.Repo{
		CreateFn: func(ctx context.Context, e *loanevent.Event) error {
			h.events = append(h.events, *e)
			return nil
		},
	}
	escrowRepo := &escrowmock.Repo{
		FindActiveByChainFn: func(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
			h.allocations++
			return &escrowDomain.Wallet{ID: 7, Address: "0xEscrow", Chain: chain, IsActive: true}, nil
		},
	}

	r := uow.Repos{Loans: loans, Events: events, Escrow: escrowRepo}
	h.uc = NewUsecase(uowmock.Passthrough(r), escrowuc.NewAllocator(escrowRepo))
	return h
}

func listedLoan() *domain.Loan {
	return &domain.Loan{
		ID:              42,
		LoanID:          "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		BorrowerHandle:  borrower.Handle,
		BorrowerWallet:  borrower.Wallet,
		Chain:           "ethereum",
		PrincipalToken:  "USDC",
		PrincipalAmount: dec("100"),
		InterestRate:    dec("12"),
		DurationDays:    30,
		AmountRepaid:    decimal.Zero,
		Status:          domain.StatusListed,
	}
}

func fundedLoan(t *testing.T) *domain.Loan {
	t.Helper()
	l := listedLoan()
	if err := l.Fund(lender.Handle, lender.Wallet, "0xfund", time.Now().UTC().AddDate(0, 0, -1)); err != nil {
		t.Fatalf("Fund: %v", err)
	}
	return l
}

func validCreateInput() CreateLoanInput {
	return CreateLoanInput{
		Chain:           "ethereum",
		PrincipalToken:  "USDC",
		PrincipalAmount: dec("100"),
		InterestRate:    dec("12"),
		DurationDays:    30,
		NftChain:        "ethereum",
		NftContract:     "0xCollection",
		NftTokenID:      "1234",
	}
}

// ----- create -----

func TestCreate_Success(t *testing.T) {
	h := newHarness(nil)

	dto, err := h.uc.Create(context.Background(), borrower, validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(dto.LoanID) != 32 {
		t.Fatalf("LoanID length = %d", len(dto.LoanID))
	}
	if dto.Status != string(domain.StatusListed) {
		t.Fatalf("status = %s", dto.Status)
	}
	if !dto.OriginationFeeAmount.Equal(dec("5")) {
		t.Fatalf("origination fee = %s, want 5", dto.OriginationFeeAmount)
	}
	if dto.EscrowWalletID != 7 {
		t.Fatalf("escrow wallet = %d", dto.EscrowWalletID)
	}
	if len(h.events) != 1 || h.events[0].EventType != loanevent.TypeListed {
		t.Fatalf("events = %+v, want one listed event", h.events)
	}
	if h.events[0].UserHandle != borrower.Handle {
		t.Fatalf("event actor = %s", h.events[0].UserHandle)
	}
}

func TestCreate_InvalidTerms(t *testing.T) {
	cases := map[string]func(*CreateLoanInput){
		"zero principal":     func(in *CreateLoanInput) { in.PrincipalAmount = decimal.Zero },
		"rate too low":       func(in *CreateLoanInput) { in.InterestRate = dec("0.05") },
		"rate too high":      func(in *CreateLoanInput) { in.InterestRate = dec("101") },
		"duration too short": func(in *CreateLoanInput) { in.DurationDays = 0 },
		"duration too long":  func(in *CreateLoanInput) { in.DurationDays = 366 },
		"missing collateral": func(in *CreateLoanInput) { in.NftContract = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(nil)
			in := validCreateInput()
			mutate(&in)

			_, err := h.uc.Create(context.Background(), borrower, in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if h.allocations != 0 {
				t.Fatal("escrow allocated despite invalid terms")
			}
			if len(h.events) != 0 {
				t.Fatal("event written despite invalid terms")
			}
		})
	}
}

func TestCreate_NoEscrowCapacity(t *testing.T) {
	escrowRepo := &escrowmock.Repo{
		FindActiveByChainFn: func(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	uc := NewUsecase(uowmock.New(), escrowuc.NewAllocator(escrowRepo))

	_, err := uc.Create(context.Background(), borrower, validCreateInput())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// ----- fund -----

func TestFund_Success(t *testing.T) {
	h := newHarness(listedLoan())

	res, err := h.uc.Fund(context.Background(), lender, h.loan.LoanID, "0xfundhash")
	if err != nil {
		t.Fatalf("Fund: %v", err)
	}

	wantTotal := domain.TotalRepaymentFor(dec("100"), dec("12"), 30)
	if !res.TotalRepayment.Equal(wantTotal) {
		t.Fatalf("total = %s, want %s", res.TotalRepayment, wantTotal)
	}
	if d := time.Until(res.DueDate); d < 29*24*time.Hour || d > 31*24*time.Hour {
		t.Fatalf("dueDate = %v, want ~30 days out", res.DueDate)
	}

	if h.saved == nil || h.saved.Status != domain.StatusFunded {
		t.Fatalf("saved loan = %+v", h.saved)
	}
	if h.savedExpected != domain.StatusListed {
		t.Fatalf("conditional update expected %s, want listed", h.savedExpected)
	}
	if len(h.events) != 1 || h.events[0].EventType != loanevent.TypeFunded {
		t.Fatalf("events = %+v", h.events)
	}
	if h.events[0].TransactionHash == nil || *h.events[0].TransactionHash != "0xfundhash" {
		t.Fatal("funding hash not recorded on event")
	}
}

func TestFund_SelfFunding(t *testing.T) {
	h := newHarness(listedLoan())

	_, err := h.uc.Fund(context.Background(), borrower, h.loan.LoanID, "0xhash")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if h.saved != nil || len(h.events) != 0 {
		t.Fatal("mutation leaked from rejected fund")
	}
}

func TestFund_StaleStatusConflict(t *testing.T) {
	h := newHarness(listedLoan())
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domain.Loan, error) {
			cp := *h.loan
			return &cp, nil
		},
		UpdateWithStatusFn: func(ctx context.Context, l *domain.Loan, expected domain.Status) error {
			// another fund won between the read and the write
			return fmt.Errorf("%w: loan is no longer %s", domain.ErrConflict, expected)
		},
	}
	events := &eventmock.Repo{CreateFn: func(ctx context.Context, e *loanevent.Event) error {
		t.Fatal("event must not be written when the conditional update loses")
		return nil
	}}
	uc := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: loans, Events: events}), nil)

	_, err := uc.Fund(context.Background(), lender, h.loan.LoanID, "0xhash")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestFund_UnknownLoan(t *testing.T) {
	h := newHarness(nil)
	_, err := h.uc.Fund(context.Background(), lender, "ffffffffffffffffffffffffffffffff", "0xhash")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFund_MissingHash(t *testing.T) {
	h := newHarness(listedLoan())
	_, err := h.uc.Fund(context.Background(), lender, h.loan.LoanID, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

// ----- repay -----

func TestRepay_PartialThenFull(t *testing.T) {
	l := fundedLoan(t)
	h := newHarness(l)
	total := *l.TotalRepaymentAmount

	res, err := h.uc.Repay(context.Background(), borrower, l.LoanID, dec("50"), "0xr1")
	if err != nil {
		t.Fatalf("Repay: %v", err)
	}
	if res.IsFullyRepaid {
		t.Fatal("50 must not fully repay")
	}
	if !res.RemainingDebt.Equal(total.Sub(dec("50"))) {
		t.Fatalf("remaining = %s", res.RemainingDebt)
	}
	if h.saved.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", h.saved.Status)
	}
	if len(h.events) != 1 || h.events[0].EventType != loanevent.TypePartialRepayment {
		t.Fatalf("events = %+v", h.events)
	}

	// carry the mutated row forward as the next locked read
	h.loan = h.saved

	res, err = h.uc.Repay(context.Background(), borrower, l.LoanID, total.Sub(dec("50")), "0xr2")
	if err != nil {
		t.Fatalf("final Repay: %v", err)
	}
	if !res.IsFullyRepaid || !res.RemainingDebt.IsZero() {
		t.Fatalf("result = %+v", res)
	}
	if h.saved.Status != domain.StatusRepaid || h.saved.CompletedAt == nil {
		t.Fatalf("saved = %+v", h.saved)
	}
	if h.events[1].EventType != loanevent.TypeRepaid {
		t.Fatalf("second event = %s", h.events[1].EventType)
	}
}

func TestRepay_Overpayment(t *testing.T) {
	l := fundedLoan(t)
	h := newHarness(l)

	_, err := h.uc.Repay(context.Background(), borrower, l.LoanID, l.TotalRepaymentAmount.Add(dec("1")), "0xr")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if h.saved != nil || len(h.events) != 0 {
		t.Fatal("mutation leaked from rejected repayment")
	}
}

func TestRepay_NonBorrower(t *testing.T) {
	l := fundedLoan(t)
	h := newHarness(l)

	_, err := h.uc.Repay(context.Background(), lender, l.LoanID, dec("10"), "0xr")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

// ----- liquidate -----

func TestLiquidate_Overdue(t *testing.T) {
	l := listedLoan()
	// funded 40 days ago with a 30 day term: 10 days overdue
	if err := l.Fund(lender.Handle, lender.Wallet, "0xfund", time.Now().UTC().AddDate(0, 0, -40)); err != nil {
		t.Fatalf("Fund: %v", err)
	}
	h := newHarness(l)

	ack, err := h.uc.Liquidate(context.Background(), lender, l.LoanID, "0xliq")
	if err != nil {
		t.Fatalf("Liquidate: %v", err)
	}
	if ack.Status != string(domain.StatusLiquidated) {
		t.Fatalf("ack = %+v", ack)
	}
	if len(h.events) != 1 || h.events[0].EventType != loanevent.TypeLiquidated {
		t.Fatalf("events = %+v", h.events)
	}
}

func TestLiquidate_NotYetOverdue(t *testing.T) {
	l := fundedLoan(t) // due ~29 days from now
	h := newHarness(l)

	_, err := h.uc.Liquidate(context.Background(), lender, l.LoanID, "0xliq")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if h.saved != nil || len(h.events) != 0 {
		t.Fatal("mutation leaked from rejected liquidation")
	}
}

// ----- cancel -----

func TestCancel_Listed(t *testing.T) {
	h := newHarness(listedLoan())

	ack, err := h.uc.Cancel(context.Background(), borrower, h.loan.LoanID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ack.Status != string(domain.StatusCancelled) {
		t.Fatalf("ack = %+v", ack)
	}
	if len(h.events) != 1 || h.events[0].EventType != loanevent.TypeCancelled {
		t.Fatalf("events = %+v", h.events)
	}
}

func TestCancel_AfterFunding(t *testing.T) {
	h := newHarness(fundedLoan(t))

	_, err := h.uc.Cancel(context.Background(), borrower, h.loan.LoanID)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if h.saved != nil || len(h.events) != 0 {
		t.Fatal("mutation leaked from rejected cancel")
	}
}
