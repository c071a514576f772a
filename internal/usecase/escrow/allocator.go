package escrow

import (
	"context"
	"errors"
	"fmt"

	escrowDomain "nftlend-backend/internal/domain/escrow"
	loanDomain "nftlend-backend/internal/domain/loan"

	"gorm.io/gorm"
)

// Allocator hands out a custody record for a chain. The record is a
// reference, not an exclusively held resource: concurrent creations may
// be assigned the same wallet.
type Allocator struct{ repo escrowDomain.Repository }

func NewAllocator(r escrowDomain.Repository) *Allocator { return &Allocator{repo: r} }

func (a *Allocator) Allocate(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
	w, err := a.repo.FindActiveByChain(ctx, chain)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no escrow capacity for chain %s", loanDomain.ErrNotFound, chain)
		}
		return nil, err
	}
	return w, nil
}
