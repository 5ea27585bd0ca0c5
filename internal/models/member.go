package models

import (
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Membership tiers and Golden Seat ranks. MemberType holds one of these
// once the user has joined the membership program.
const (
	TierX1 = "X1"
	TierX2 = "X2"
	TierX3 = "X3"
	TierX5 = "X5"

	RankCaptain       = "e-Captain"
	RankMayor         = "e-Mayor"
	RankGovernor      = "e-Governor"
	RankSenator       = "e-Senator"
	RankVicePresident = "e-Vice-President"
	RankPresident     = "e-President"
)

// ReferralCodePrefix is prepended to every generated referral code.
const ReferralCodePrefix = "MUL"

const referralCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Member struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string          `gorm:"type:varchar(100)" json:"firstName"`
	LastName     string          `gorm:"type:varchar(100)" json:"lastName"`
	Role         string          `gorm:"type:varchar(20);default:'user'" json:"role"`
	ReferralCode string          `gorm:"type:varchar(36);uniqueIndex" json:"referralCode,omitempty"`
	ReferredBy   string          `gorm:"type:varchar(36);index" json:"referredBy,omitempty"` // referral code of the sponsor, empty for roots
	MemberType   string          `gorm:"type:varchar(30)" json:"memberType,omitempty"`
	MemberDate   *time.Time      `json:"memberDate,omitempty"` // set when membership is activated
	Balance      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// IsMember reports whether the user has an active membership.
func (m *Member) IsMember() bool {
	return m.MemberType != ""
}

// DisplayName joins first and last name for table views.
func (m *Member) DisplayName() string {
	switch {
	case m.FirstName == "" && m.LastName == "":
		return ""
	case m.LastName == "":
		return m.FirstName
	case m.FirstName == "":
		return m.LastName
	}
	return m.FirstName + " " + m.LastName
}

// NewReferralCode generates a fresh referral code such as "MULx4Qa9tR".
func NewReferralCode() (string, error) {
	id, err := gonanoid.Generate(referralCodeAlphabet, 8)
	if err != nil {
		return "", err
	}
	return ReferralCodePrefix + id, nil
}

// GoldenSeatRanks lists the six seat ranks in ascending order.
func GoldenSeatRanks() []string {
	return []string{
		RankCaptain,
		RankMayor,
		RankGovernor,
		RankSenator,
		RankVicePresident,
		RankPresident,
	}
}

// IsGoldenSeatRank reports whether a member type is one of the seat ranks.
func IsGoldenSeatRank(memberType string) bool {
	for _, r := range GoldenSeatRanks() {
		if r == memberType {
			return true
		}
	}
	return false
}
