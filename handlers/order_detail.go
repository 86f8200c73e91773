package handlers

import (
	"net/http"

	"bakeryapi/middleware"
	"bakeryapi/models"

	"github.com/gin-gonic/gin"
)

// GetOrderDetails retrieves one order with its items. The customer, the
// bakery that fulfils it and admins can see it; everyone else gets a 404.
func (h *Handler) GetOrderDetails(c *gin.Context) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondStoreError(c, err, "order", "failed to fetch order")
		return
	}

	userID := middleware.UserID(c)
	if order.CustomerID != userID && order.OwnerID != userID && middleware.Role(c) != models.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
