package handlers

import (
	"net/http"
	"strings"

	"bakeryapi/events"
	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/orders"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// GetOrders retrieves the customer's orders for the OrderCenter. ?tab picks
// one of pending, processing, completed or cancelled; counts always cover
// every tab.
func (h *Handler) GetOrders(c *gin.Context) {
	h.tabbedOrders(c, models.OrderFilter{CustomerID: middleware.UserID(c)})
}

// GetOwnerOrders is the bakery-side OrderCenter
func (h *Handler) GetOwnerOrders(c *gin.Context) {
	h.tabbedOrders(c, models.OrderFilter{OwnerID: middleware.UserID(c)})
}

func (h *Handler) tabbedOrders(c *gin.Context, f models.OrderFilter) {
	tab, filtered, err := orders.ParseTab(c.Query("tab"))
	if err != nil {
		h.respondError(c, err, "invalid tab")
		return
	}

	all, _, err := h.store.ListOrders(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err, "failed to fetch orders")
		return
	}

	list := models.OrderList{Orders: all, Counts: orders.Counts(all, models.StatusOf)}
	if filtered {
		list.Orders = orders.Filter(all, tab, models.StatusOf)
	}
	c.JSON(http.StatusOK, list)
}

// SubmitPayment attaches the customer's transfer reference to an order
func (h *Handler) SubmitPayment(c *gin.Context) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	var input models.PaymentProofInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	order, err := h.store.UpdateOrder(c.Request.Context(), id, func(o *models.Order) error {
		if o.CustomerID != userID {
			return store.ErrNotFound
		}
		if err := orders.CheckPaymentSubmission(o.Status, o.PaymentStatus); err != nil {
			return err
		}
		o.PaymentStatus = orders.PaymentSubmitted
		o.PaymentReference = strings.TrimSpace(input.Reference)
		return nil
	})
	if err != nil {
		h.respondStoreError(c, err, "order", "failed to submit payment")
		return
	}

	h.publish(c.Request.Context(), events.OrderPaymentSubmitted, order)
	c.JSON(http.StatusOK, gin.H{
		"message": "payment submitted",
		"order":   order,
	})
}

// UpdateOwnerOrderStatus moves one of the owner's orders along its lifecycle
func (h *Handler) UpdateOwnerOrderStatus(c *gin.Context) {
	ownerID := middleware.UserID(c)
	h.changeStatus(c, func(o *models.Order) error {
		if o.OwnerID != ownerID {
			return store.ErrNotFound
		}
		return nil
	})
}

// ReviewPayment verifies or rejects a submitted payment
func (h *Handler) ReviewPayment(c *gin.Context) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	var input models.PaymentDecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	decision, err := orders.ParsePaymentDecision(input.Decision)
	if err != nil {
		h.respondError(c, err, "invalid decision")
		return
	}

	ownerID := middleware.UserID(c)
	order, err := h.store.UpdateOrder(c.Request.Context(), id, func(o *models.Order) error {
		if o.OwnerID != ownerID {
			return store.ErrNotFound
		}
		if err := orders.CheckPaymentDecision(o.PaymentStatus); err != nil {
			return err
		}
		o.PaymentStatus = decision
		return nil
	})
	if err != nil {
		h.respondStoreError(c, err, "order", "failed to update payment")
		return
	}

	h.publish(c.Request.Context(), events.OrderStatusChanged, order)
	c.JSON(http.StatusOK, gin.H{
		"message": "payment " + string(decision),
		"order":   order,
	})
}

// changeStatus binds {"status": ...} and applies the transition after
// allow has vetted the caller.
func (h *Handler) changeStatus(c *gin.Context, allow func(o *models.Order) error) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	var input models.StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, err := orders.ParseStatus(input.Status)
	if err != nil {
		h.respondError(c, err, "invalid status")
		return
	}

	order, err := h.store.UpdateOrder(c.Request.Context(), id, func(o *models.Order) error {
		if err := allow(o); err != nil {
			return err
		}
		if err := orders.CheckTransition(o.Status, next); err != nil {
			return err
		}
		o.Status = next
		return nil
	})
	if err != nil {
		h.respondStoreError(c, err, "order", "failed to update order status")
		return
	}

	h.publish(c.Request.Context(), events.OrderStatusChanged, order)
	c.JSON(http.StatusOK, gin.H{
		"message": "order status updated successfully",
		"order":   order,
	})
}
