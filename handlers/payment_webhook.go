package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"bakeryapi/apperr"
	"bakeryapi/events"
	"bakeryapi/models"
	"bakeryapi/orders"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// WebhookSecretHeader carries the shared secret a payment gateway must send.
const WebhookSecretHeader = "X-Webhook-Secret"

// errRedelivered marks a gateway retry of a callback already applied.
var errRedelivered = errors.New("callback already applied")

// PaymentWebhook handles payment status updates from the payment service
func (h *Handler) PaymentWebhook(c *gin.Context) {
	if secret := h.opts.WebhookSecret; secret != "" {
		got := c.GetHeader(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	var payload models.PaymentWebhookInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	found, err := h.store.GetOrderByNumber(ctx, payload.OrderNumber)
	if err != nil {
		h.respondStoreError(c, err, "order", "database error")
		return
	}

	next, ok := orders.FromGateway(payload.Status)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "payment status unchanged"})
		return
	}

	order, err := h.store.UpdateOrder(ctx, found.ID, func(o *models.Order) error {
		if o.Status.Terminal() {
			return apperr.E(apperr.Conflict, "order is "+string(o.Status))
		}
		if !payload.Amount.IsZero() && !payload.Amount.Equal(o.TotalAmount) {
			return apperr.E(apperr.Invalid, "amount does not match order total")
		}
		if o.PaymentStatus == orders.PaymentVerified {
			if next == orders.PaymentVerified && o.PaymentReference == payload.TransactionID {
				return errRedelivered
			}
			return apperr.E(apperr.Conflict, "payment already verified")
		}
		o.PaymentStatus = next
		o.PaymentReference = payload.TransactionID
		return nil
	})
	if errors.Is(err, errRedelivered) {
		c.JSON(http.StatusOK, gin.H{"message": "payment status unchanged"})
		return
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		h.respondError(c, err, "failed to update order status")
		return
	}

	h.publish(ctx, events.OrderStatusChanged, order)
	c.JSON(http.StatusOK, gin.H{"message": "order status updated successfully"})
}
