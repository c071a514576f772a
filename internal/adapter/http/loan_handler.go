package http

import (
	"net/http"

	uc "nftlend-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *uc.Usecase }

func NewLoanHandler(u *uc.Usecase) *LoanHandler { return &LoanHandler{uc: u} }

type createLoanReq struct {
	Chain             string           `json:"chain" validate:"required,max=32"`
	PrincipalToken    string           `json:"principal_token" validate:"required,max=32"`
	PrincipalAmount   decimal.Decimal  `json:"principal_amount" validate:"gt=0"`
	InterestRate      decimal.Decimal  `json:"interest_rate" validate:"gte=0.1,lte=100"`
	DurationDays      int              `json:"duration_days" validate:"required,gte=1,lte=365"`
	NftChain          string           `json:"nft_chain" validate:"required,max=32"`
	NftContract       string           `json:"nft_contract" validate:"required,max=128"`
	NftTokenID        string           `json:"nft_token_id" validate:"required,max=128"`
	NftEstimatedValue *decimal.Decimal `json:"nft_estimated_value" validate:"omitempty"`
	Description       *string          `json:"description" validate:"omitempty,max=2000"`
}

type fundLoanReq struct {
	FundingTxHash string `json:"funding_tx_hash" validate:"required,txhash"`
}

type repayLoanReq struct {
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
	RepaymentTxHash string          `json:"repayment_tx_hash" validate:"required,txhash"`
}

type liquidateLoanReq struct {
	LiquidationTxHash string `json:"liquidation_tx_hash" validate:"required,txhash"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	dto, err := h.uc.Create(c.Request().Context(), actor, uc.CreateLoanInput{
		Chain:             req.Chain,
		PrincipalToken:    req.PrincipalToken,
		PrincipalAmount:   req.PrincipalAmount,
		InterestRate:      req.InterestRate,
		DurationDays:      req.DurationDays,
		NftChain:          req.NftChain,
		NftContract:       req.NftContract,
		NftTokenID:        req.NftTokenID,
		NftEstimatedValue: req.NftEstimatedValue,
		Description:       req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req fundLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	res, err := h.uc.Fund(c.Request().Context(), actor, c.Param("loan_id"), req.FundingTxHash)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req repayLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	res, err := h.uc.Repay(c.Request().Context(), actor, c.Param("loan_id"), req.Amount, req.RepaymentTxHash)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) LiquidateLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req liquidateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	ack, err := h.uc.Liquidate(c.Request().Context(), actor, c.Param("loan_id"), req.LiquidationTxHash)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ack)
}

func (h *LoanHandler) CancelLoan(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	ack, err := h.uc.Cancel(c.Request().Context(), actor, c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ack)
}
