package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mulmarket/internal/models"
)

// GetTransactions lists the authenticated member's transactions, newest
// first.
func (h *Handlers) GetTransactions(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var transactions []models.Transaction
	if err := h.db.WithContext(c.Request.Context()).
		Where("member_id = ?", user.ID).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": transactions})
}

// GetCommissions returns the member's total commission received and the
// golden seat spot the member currently occupies, if any.
func (h *Handlers) GetCommissions(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	agg, err := h.ledger.AggregateFor(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to aggregate commissions", "member_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate commissions"})
		return
	}

	spot := ""
	name := user.DisplayName()
	if name != "" {
		var seat models.GoldenSeat
		err := h.db.WithContext(c.Request.Context()).
			Where("captain = ? OR mayor = ? OR governor = ? OR senator = ? OR vice_president = ? OR president = ?",
				name, name, name, name, name, name).
			First(&seat).Error
		if err == nil {
			spot = seat.Spot
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"totalCommission": agg.Commission,
		"todaySum":        agg.TodaySum,
		"monthSum":        agg.MonthSum,
		"spot":            spot,
	})
}
