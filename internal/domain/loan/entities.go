package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusListed     Status = "listed"
	StatusFunded     Status = "funded"
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRepaid, StatusLiquidated, StatusCancelled:
		return true
	}
	return false
}

// OriginationFeePct is fixed for every loan at creation.
var OriginationFeePct = decimal.NewFromFloat(5.0)

// MoneyScale is the decimal scale derived amounts are rounded to.
const MoneyScale = 8

type Loan struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`

	BorrowerHandle string  `gorm:"size:64;index:idx_loans_borrower" json:"borrower_handle"`
	BorrowerWallet string  `gorm:"size:128" json:"borrower_wallet"`
	LenderHandle   *string `gorm:"size:64;index:idx_loans_lender" json:"lender_handle,omitempty"`
	LenderWallet   *string `gorm:"size:128" json:"lender_wallet,omitempty"`

	// Terms, fixed at creation and never recomputed.
	Chain                string          `gorm:"size:32;index:idx_loans_chain" json:"chain"`
	PrincipalToken       string          `gorm:"size:32" json:"principal_token"`
	PrincipalAmount      decimal.Decimal `gorm:"type:decimal(30,10)" json:"principal_amount"`
	InterestRate         decimal.Decimal `gorm:"type:decimal(10,4)" json:"interest_rate"`
	DurationDays         int             `json:"duration_days"`
	OriginationFeePct    decimal.Decimal `gorm:"type:decimal(6,2)" json:"origination_fee_pct"`
	OriginationFeeAmount decimal.Decimal `gorm:"type:decimal(30,10)" json:"origination_fee_amount"`

	// Collateral reference. The NFT itself is never moved or locked here.
	NftChain          string           `gorm:"size:32" json:"nft_chain"`
	NftContract       string           `gorm:"size:128" json:"nft_contract"`
	NftTokenID        string           `gorm:"size:128;column:nft_token_id" json:"nft_token_id"`
	NftEstimatedValue *decimal.Decimal `gorm:"type:decimal(30,10)" json:"nft_estimated_value,omitempty"`
	Description       *string          `gorm:"type:text" json:"description,omitempty"`
	EscrowWalletID    uint64           `gorm:"column:escrow_wallet_id" json:"escrow_wallet_id"`

	// Set once by the funding transition, never recomputed.
	TotalRepaymentAmount *decimal.Decimal `gorm:"type:decimal(30,10)" json:"total_repayment_amount,omitempty"`
	DueAt                *time.Time       `json:"due_at,omitempty"`

	AmountRepaid decimal.Decimal `gorm:"type:decimal(30,10)" json:"amount_repaid"`
	Status       Status          `gorm:"type:enum('listed','funded','active','repaid','liquidated','cancelled');default:'listed';index:idx_loans_status" json:"status"`

	// Opaque references supplied by the caller; never verified on-chain.
	FundingTxHash     *string `gorm:"size:128" json:"funding_tx_hash,omitempty"`
	RepaymentTxHash   *string `gorm:"size:128" json:"repayment_tx_hash,omitempty"`
	LiquidationTxHash *string `gorm:"size:128" json:"liquidation_tx_hash,omitempty"`

	FundedAt    *time.Time `json:"funded_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// TotalRepaymentFor computes principal * (1 + rate/100 * days/365):
// simple interest pro-rated by days, not compounding.
func TotalRepaymentFor(principal, annualRate decimal.Decimal, durationDays int) decimal.Decimal {
	interest := principal.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(durationDays))).
		Div(decimal.NewFromInt(36500))
	return principal.Add(interest).Round(MoneyScale)
}

// OriginationFeeFor computes the fixed 5% origination fee on principal.
func OriginationFeeFor(principal decimal.Decimal) decimal.Decimal {
	return principal.Mul(OriginationFeePct).Div(decimal.NewFromInt(100)).Round(MoneyScale)
}

// RemainingDebt returns totalRepaymentAmount minus amountRepaid, or zero before funding.
func (l *Loan) RemainingDebt() decimal.Decimal {
	if l.TotalRepaymentAmount == nil {
		return decimal.Zero
	}
	return l.TotalRepaymentAmount.Sub(l.AmountRepaid)
}

// Overdue reports whether the loan is funded/active and past its due date.
func (l *Loan) Overdue(now time.Time) bool {
	if l.DueAt == nil {
		return false
	}
	if l.Status != StatusFunded && l.Status != StatusActive {
		return false
	}
	return now.After(*l.DueAt)
}
