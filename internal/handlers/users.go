package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mulmarket/internal/models"
	"mulmarket/internal/registry"
)

// AllUsers lists every registered user for the admin panel.
func (h *Handlers) AllUsers(c *gin.Context) {
	var users []models.Member
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// MemberReferral resolves a referral code to its owner's public details, so
// the signup page can show who the new user is joining under.
func (h *Handlers) MemberReferral(c *gin.Context) {
	code := c.Param("referralCode")
	member, err := h.members.FindByReferralCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, registry.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Referral code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"firstName":  member.FirstName,
			"lastName":   member.LastName,
			"memberType": member.MemberType,
		},
	})
}

// Wallet returns the member's balance and the last earnings snapshot. The
// snapshot is display-only; GetReferralTree recomputes and overwrites it.
func (h *Handlers) Wallet(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	total, ok, err := h.earnings.TotalEarnings(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Warn("failed to read earnings snapshot", "member_id", user.ID, "error", err)
		ok = false
	}

	resp := gin.H{"success": true, "balance": user.Balance}
	if ok {
		resp["totalEarnings"] = total
	}
	c.JSON(http.StatusOK, resp)
}
