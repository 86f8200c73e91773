package handlers

import (
	"net/http"

	"bakeryapi/events"
	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/orders"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// CancelOrder lets a customer cancel an order the bakery has not started.
// The items go back into stock.
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	order, err := h.store.UpdateOrder(c.Request.Context(), id, func(o *models.Order) error {
		if o.CustomerID != userID {
			return store.ErrNotFound
		}
		if err := orders.CheckCustomerCancel(o.Status); err != nil {
			return err
		}
		o.Status = orders.StatusCancelled
		return nil
	})
	if err != nil {
		h.respondStoreError(c, err, "order", "failed to cancel order")
		return
	}

	h.publish(c.Request.Context(), events.OrderStatusChanged, order)
	c.JSON(http.StatusOK, gin.H{
		"message": "order cancelled successfully",
		"order":   order,
	})
}
