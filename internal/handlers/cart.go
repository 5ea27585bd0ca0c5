package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mulmarket/internal/models"
)

// ReferralCommissionRate is the portion of a purchase credited to the
// buyer's sponsor. Rate application happens here at ledger write time; the
// aggregator only sums stored commission figures.
var ReferralCommissionRate = decimal.NewFromFloat(0.05)

type AddToCartRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

func (h *Handlers) GetCart(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var items []models.CartItem
	if err := h.db.Where("member_id = ?", user.ID).Order("created_at ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": items})
}

func (h *Handlers) AddToCart(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.Item
	if err := h.db.First(&item, "id = ?", req.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Merge with an existing cart line for the same item.
	var existing models.CartItem
	err = h.db.Where("member_id = ? AND item_id = ?", user.ID, req.ItemID).First(&existing).Error
	if err == nil {
		existing.Quantity += req.Quantity
		if err := h.db.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart_item": existing})
		return
	}

	cartItem := models.CartItem{MemberID: user.ID, ItemID: req.ItemID, Quantity: req.Quantity}
	if err := h.db.Create(&cartItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "cart_item": cartItem})
}

func (h *Handlers) RemoveFromCart(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result := h.db.Delete(&models.CartItem{}, "id = ? AND member_id = ?", c.Param("id"), user.ID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Checkout turns the member's cart into a paid order, records the buyer's
// ledger transaction and credits the sponsor's commission. Payment provider
// integration happens upstream of this endpoint.
func (h *Handlers) Checkout(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var cartItems []models.CartItem
	if err := h.db.Where("member_id = ?", user.ID).Order("created_at ASC").Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	var order models.Order
	err = h.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cartItems))

		for _, line := range cartItems {
			var item models.Item
			if err := tx.First(&item, "id = ?", line.ItemID).Error; err != nil {
				return fmt.Errorf("load item %s: %w", line.ItemID, err)
			}
			if item.Stock < line.Quantity {
				return fmt.Errorf("insufficient stock for %s", item.Name)
			}
			item.Stock -= line.Quantity
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("update stock for %s: %w", item.ID, err)
			}

			lineTotal := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			orderItems = append(orderItems, models.OrderItem{
				ItemID:   item.ID,
				Quantity: line.Quantity,
				Price:    item.Price,
			})
		}

		order = models.Order{MemberID: user.ID, Total: total, Status: models.OrderPaid}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = orderItems

		purchase := models.Transaction{
			MemberID: user.ID,
			OrderID:  order.ID,
			Amount:   total,
			Status:   models.TransactionCompleted,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return fmt.Errorf("record purchase: %w", err)
		}

		if err := h.creditSponsor(tx, user, order.ID, total); err != nil {
			return err
		}

		if err := tx.Where("member_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		h.logger.Error("checkout failed", "member_id", user.ID, "error", err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// creditSponsor writes the sponsor's commission event for a purchase. A
// dangling referral code means no sponsor, not an error.
func (h *Handlers) creditSponsor(tx *gorm.DB, buyer *models.Member, orderID string, total decimal.Decimal) error {
	if buyer.ReferredBy == "" {
		return nil
	}

	var sponsor models.Member
	err := tx.Where("referral_code = ?", buyer.ReferredBy).First(&sponsor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve sponsor: %w", err)
	}

	commission := total.Mul(ReferralCommissionRate).Round(2)
	event := models.Transaction{
		MemberID:   sponsor.ID,
		OrderID:    orderID,
		Amount:     decimal.Zero,
		Commission: commission,
		Status:     models.TransactionCompleted,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("record sponsor commission: %w", err)
	}

	sponsor.Balance = sponsor.Balance.Add(commission)
	if err := tx.Save(&sponsor).Error; err != nil {
		return fmt.Errorf("update sponsor balance: %w", err)
	}
	return nil
}
