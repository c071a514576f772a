package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Actor is the resolved caller of a write operation. Identity and
// signature mechanics live outside this core.
type Actor struct {
	Handle string
	Wallet string
}

type CreateLoanInput struct {
	Chain             string           `json:"chain"`
	PrincipalToken    string           `json:"principal_token"`
	PrincipalAmount   decimal.Decimal  `json:"principal_amount"`
	InterestRate      decimal.Decimal  `json:"interest_rate"`
	DurationDays      int              `json:"duration_days"`
	NftChain          string           `json:"nft_chain"`
	NftContract       string           `json:"nft_contract"`
	NftTokenID        string           `json:"nft_token_id"`
	NftEstimatedValue *decimal.Decimal `json:"nft_estimated_value,omitempty"`
	Description       *string          `json:"description,omitempty"`
}

type LoanDTO struct {
	LoanID               string          `json:"loan_id"`
	BorrowerHandle       string          `json:"borrower_handle"`
	Status               string          `json:"status"`
	Chain                string          `json:"chain"`
	PrincipalToken       string          `json:"principal_token"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	DurationDays         int             `json:"duration_days"`
	OriginationFeeAmount decimal.Decimal `json:"origination_fee_amount"`
	EscrowWalletID       uint64          `json:"escrow_wallet_id"`
	CreatedAt            time.Time       `json:"created_at"`
}

type FundResult struct {
	LoanID         string          `json:"loan_id"`
	DueDate        time.Time       `json:"due_date"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
}

type Ack struct {
	LoanID      string    `json:"loan_id"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

type RepayResult struct {
	LoanID        string          `json:"loan_id"`
	AmountRepaid  decimal.Decimal `json:"amount_repaid"`
	RemainingDebt decimal.Decimal `json:"remaining_debt"`
	IsFullyRepaid bool            `json:"is_fully_repaid"`
}
