package escrow

import "time"

// Wallet is a custody-pool entry. A loan holds a reference to one of these
// from creation on; allocation is an availability lookup, not an exclusive
// reservation, so two concurrent creations on the same chain may share a
// wallet.
type Wallet struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Address   string    `gorm:"size:128" json:"address"`
	Chain     string    `gorm:"size:32;index:idx_escrow_wallets_chain" json:"chain"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string { return "escrow_wallets" }
