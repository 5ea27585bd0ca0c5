package registry

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mulmarket/internal/models"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberRegistry resolves members by id and by referral code. The referral
// graph is stored denormalized: a member references its sponsor through the
// sponsor's referral code, never through an object pointer.
type MemberRegistry interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	FindByReferralCode(ctx context.Context, code string) (*models.Member, error)
	// FindChildrenOf returns every member whose ReferredBy equals the given
	// referral code, in registry insertion order.
	FindChildrenOf(ctx context.Context, referralCode string) ([]models.Member, error)
}

type GormRegistry struct {
	db *gorm.DB
}

func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

func (r *GormRegistry) FindByID(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member by id: %w", err)
	}
	return &member, nil
}

func (r *GormRegistry) FindByReferralCode(ctx context.Context, code string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "referral_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member by referral code: %w", err)
	}
	return &member, nil
}

func (r *GormRegistry) FindChildrenOf(ctx context.Context, referralCode string) ([]models.Member, error) {
	if referralCode == "" {
		return []models.Member{}, nil
	}
	var children []models.Member
	err := r.db.WithContext(ctx).
		Where("referred_by = ?", referralCode).
		Order("created_at ASC, id ASC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("find children of %s: %w", referralCode, err)
	}
	return children, nil
}
