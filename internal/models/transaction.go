package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction statuses.
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

// Transaction is one monetary event credited to a member: a purchase, a
// membership payment or a commission payout. Commission is the portion
// already attributed by the upstream business rule; nothing here re-derives
// rates.
type Transaction struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	MemberID   string          `gorm:"type:varchar(36);not null;index" json:"member_id"`
	OrderID    string          `gorm:"type:varchar(36);index" json:"order_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Commission decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"commission"`
	Status     string          `gorm:"type:varchar(20);default:'completed'" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
