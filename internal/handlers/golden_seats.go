package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mulmarket/internal/goldenseat"
	"mulmarket/internal/models"
)

// ListGoldenSeats returns the raw seat assignment rows. Filtering, sorting
// and grouping can happen client-side or through ViewGoldenSeats.
func (h *Handlers) ListGoldenSeats(c *gin.Context) {
	rows, err := h.loadSeatRows(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load golden seats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "members": rows})
}

// ViewGoldenSeats applies the filter -> sort -> group pipeline server-side.
// Query params: filter, sort, direction (asc|desc), group.
func (h *Handlers) ViewGoldenSeats(c *gin.Context) {
	rows, err := h.loadSeatRows(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load golden seats"})
		return
	}

	opts := goldenseat.Options{
		FilterText:    c.Query("filter"),
		SortKey:       c.Query("sort"),
		SortDirection: goldenseat.Direction(c.Query("direction")),
		GroupKey:      c.Query("group"),
	}

	result, err := goldenseat.View(rows, opts)
	if err != nil {
		if errors.Is(err, goldenseat.ErrInvalidKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to build golden seat view", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"groups":     result.Groups,
		"grandTotal": result.GrandTotal,
	})
}

func (h *Handlers) loadSeatRows(c *gin.Context) ([]goldenseat.Row, error) {
	var seats []models.GoldenSeat
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at ASC, id ASC").
		Find(&seats).Error; err != nil {
		h.logger.Error("failed to load golden seats", "error", err)
		return nil, err
	}

	rows := make([]goldenseat.Row, 0, len(seats))
	for _, seat := range seats {
		rows = append(rows, goldenseat.RowFromModel(seat))
	}
	return rows, nil
}
