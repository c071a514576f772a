package http

import (
	"errors"
	"net/http"
	"strings"

	loanDomain "nftlend-backend/internal/domain/loan"
	uc "nftlend-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

// Actor identity headers. Authentication happens upstream; these carry the
// already-resolved caller identity.
const (
	headerUserHandle    = "Ax-User-Handle"
	headerWalletAddress = "Ax-Wallet-Address"
)

var errMissingActor = errors.New("missing Ax-User-Handle or Ax-Wallet-Address header")

func actorFrom(c echo.Context) (uc.Actor, error) {
	handle := strings.TrimSpace(c.Request().Header.Get(headerUserHandle))
	wallet := strings.TrimSpace(c.Request().Header.Get(headerWalletAddress))
	if handle == "" || wallet == "" {
		return uc.Actor{}, errMissingActor
	}
	return uc.Actor{Handle: handle, Wallet: wallet}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, loanDomain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, loanDomain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, loanDomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loanDomain.ErrInvalidState), errors.Is(err, loanDomain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
