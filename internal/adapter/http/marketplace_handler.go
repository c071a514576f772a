package http

import (
	"net/http"
	"strconv"

	uc "nftlend-backend/internal/usecase/marketplace"

	"github.com/labstack/echo/v4"
)

type MarketplaceHandler struct{ uc *uc.Usecase }

func NewMarketplaceHandler(u *uc.Usecase) *MarketplaceHandler {
	return &MarketplaceHandler{uc: u}
}

func optQuery(c echo.Context, name string) *string {
	if v := c.QueryParam(name); v != "" {
		return &v
	}
	return nil
}

func (h *MarketplaceHandler) ListLoans(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}

	views, err := h.uc.List(c.Request().Context(), uc.ListFilter{
		Status:   optQuery(c, "status"),
		Chain:    optQuery(c, "chain"),
		Borrower: optQuery(c, "borrower"),
		Lender:   optQuery(c, "lender"),
	}, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": views, "count": len(views)})
}

func (h *MarketplaceHandler) GetLoan(c echo.Context) error {
	detail, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *MarketplaceHandler) ListEvents(c echo.Context) error {
	limit, offset := 0, 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		offset = n
	}

	events, err := h.uc.Events(c.Request().Context(), optQuery(c, "loan_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func (h *MarketplaceHandler) GetStatistics(c echo.Context) error {
	stats, err := h.uc.Statistics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
