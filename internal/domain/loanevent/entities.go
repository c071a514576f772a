package loanevent

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Type string

const (
	TypeListed           Type = "listed"
	TypeFunded           Type = "funded"
	TypePartialRepayment Type = "partial_repayment"
	TypeRepaid           Type = "repaid"
	TypeLiquidated       Type = "liquidated"
	TypeCancelled        Type = "cancelled"
)

// Event is one immutable audit record, written in the same transaction as
// the loan mutation it documents. Rows are never updated or deleted.
type Event struct {
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// FK to loans.id (numeric)
	LoanID           uint64           `gorm:"column:loan_id;not null;index:idx_loan_events_loan" json:"-"`
	EventType        Type             `gorm:"size:32;not null" json:"event_type"`
	EventDescription string           `gorm:"type:text" json:"event_description"`
	Amount           *decimal.Decimal `gorm:"type:decimal(30,10)" json:"amount,omitempty"`
	TransactionHash  *string          `gorm:"size:128" json:"transaction_hash,omitempty"`
	UserHandle       string           `gorm:"size:64" json:"user_handle"`
	// Transition-specific derived facts (remaining debt, due date, ...).
	EventData datatypes.JSON `gorm:"column:event_data" json:"event_data,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "loan_events" }
