package escrowmock

import (
	"context"
	"errors"

	domain "nftlend-backend/internal/domain/escrow"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("escrowmock: method not implemented")

type Repo struct {
	FindActiveByChainFn func(ctx context.Context, chain string) (*domain.Wallet, error)
}

func (m *Repo) FindActiveByChain(ctx context.Context, chain string) (*domain.Wallet, error) {
	if m.FindActiveByChainFn != nil {
		return m.FindActiveByChainFn(ctx, chain)
	}
	return nil, errUnimplemented
}
