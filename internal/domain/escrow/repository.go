package escrow

import "context"

type Repository interface {
	// FindActiveByChain returns one active custody record for the chain,
	// or gorm.ErrRecordNotFound when the pool has no capacity.
	FindActiveByChain(ctx context.Context, chain string) (*Wallet, error)
}
