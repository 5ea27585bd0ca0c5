package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mulmarket/internal/models"
	"mulmarket/internal/monitoring"
	"mulmarket/internal/referral"
	"mulmarket/internal/registry"
)

type JoinMembershipRequest struct {
	MemberType string `json:"memberType" binding:"required"`
	ReferredBy string `json:"referredBy,omitempty"`
}

// JoinMembership activates a membership for the authenticated user: assigns
// the tier, generates a referral code and links the sponsor.
func (h *Handlers) JoinMembership(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if user.IsMember() {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member"})
		return
	}

	var req JoinMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validMemberType(req.MemberType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown member type"})
		return
	}

	if req.ReferredBy != "" {
		sponsor, err := h.members.FindByReferralCode(c.Request.Context(), req.ReferredBy)
		if err != nil {
			if errors.Is(err, registry.ErrMemberNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Referral code does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if sponsor.ID == user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot use your own referral code"})
			return
		}
	}

	code, err := models.NewReferralCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate referral code"})
		return
	}

	now := time.Now()
	user.MemberType = req.MemberType
	user.ReferralCode = code
	user.ReferredBy = req.ReferredBy
	user.MemberDate = &now
	if err := h.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate membership"})
		return
	}

	h.logger.Info("membership activated",
		"member_id", user.ID, "member_type", user.MemberType, "referred_by", user.ReferredBy)

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// GetReferralTree builds the member's referral tree down to the configured
// depth and returns it with root statistics. The combined earnings value is
// recomputed on every call; the cached snapshot is display-only.
func (h *Handlers) GetReferralTree(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !user.IsMember() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	maxDepth := h.config.MaxTreeDepth
	if raw := c.Query("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid depth"})
			return
		}
		maxDepth = d
	}

	start := time.Now()
	root, err := h.trees.BuildTree(c.Request.Context(), user.ID, maxDepth)
	if err != nil {
		switch {
		case errors.Is(err, referral.ErrInvalidDepth):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Depth must be at least 1"})
		case errors.Is(err, referral.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case c.Request.Context().Err() != nil:
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Request cancelled"})
		default:
			h.logger.Error("failed to build referral tree", "member_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build referral tree"})
		}
		return
	}
	monitoring.TreeBuildDuration.Observe(time.Since(start).Seconds())

	total := referral.CombinedEarnings(root)
	if err := h.earnings.SetTotalEarnings(c.Request.Context(), user.ID, total); err != nil {
		// Snapshot failures never fail the request.
		h.logger.Warn("failed to cache earnings snapshot", "member_id", user.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"referralTree": root,
			"statistics": gin.H{
				"directReferralEarnings": root.Statistics.DirectReferralEarnings,
				"commission":             root.Statistics.Commission,
				"totalEarningsWithCommissionAndDirectReferral": total,
			},
		},
	})
}

// ViewReferrals lists the member's direct referrals enriched with ledger
// statistics plus per-tier counts.
func (h *Handlers) ViewReferrals(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !user.IsMember() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	children, err := h.members.FindChildrenOf(c.Request.Context(), user.ReferralCode)
	if err != nil {
		h.logger.Error("failed to list referrals", "member_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list referrals"})
		return
	}

	result, err := h.aggregator.AggregateAcrossList(c.Request.Context(), children)
	if err != nil {
		h.logger.Error("failed to aggregate referrals", "member_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate referrals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"data":           result.Referrals,
		"referralCounts": result.Counts,
	})
}

// CheckTransaction reports whether the authenticated user has a completed
// membership transaction, used by the client to gate member-only pages.
func (h *Handlers) CheckTransaction(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var count int64
	if err := h.db.Model(&models.Transaction{}).
		Where("member_id = ? AND status = ?", user.ID, models.TransactionCompleted).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"hasTransaction": count > 0,
	})
}

func validMemberType(memberType string) bool {
	switch memberType {
	case models.TierX1, models.TierX2, models.TierX3, models.TierX5:
		return true
	}
	return models.IsGoldenSeatRank(memberType)
}
