package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GoldenSeat is one seat assignment row: who currently occupies each of the
// six roles for a spot, plus the commission accumulated by the spot. Role
// fields left empty render as "Not Assigned" downstream.
type GoldenSeat struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Spot          string          `gorm:"type:varchar(100);index" json:"spot"`
	Captain       string          `gorm:"type:varchar(200)" json:"captain"`
	Mayor         string          `gorm:"type:varchar(200)" json:"mayor"`
	Governor      string          `gorm:"type:varchar(200)" json:"governor"`
	Senator       string          `gorm:"type:varchar(200)" json:"senator"`
	VicePresident string          `gorm:"type:varchar(200)" json:"vicePresident"`
	President     string          `gorm:"type:varchar(200)" json:"president"`
	Commission    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"commission"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (g *GoldenSeat) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}
