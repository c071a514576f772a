package mysql

import (
	"context"

	escrowDomain "nftlend-backend/internal/domain/escrow"

	"gorm.io/gorm"
)

type EscrowRepository struct{ db *gorm.DB }

func NewEscrowRepository(db *gorm.DB) *EscrowRepository { return &EscrowRepository{db: db} }

// FindActiveByChain picks the oldest active wallet for the chain. This is
// an availability lookup, not a reservation: no lock is taken.
func (r *EscrowRepository) FindActiveByChain(ctx context.Context, chain string) (*escrowDomain.Wallet, error) {
	var out escrowDomain.Wallet
	res := r.db.WithContext(ctx).
		Where("chain = ? AND is_active = ?", chain, true).
		Order("id ASC").
		First(&out)
	return &out, res.Error
}
