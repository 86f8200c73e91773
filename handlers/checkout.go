package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"bakeryapi/events"
	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// Checkout converts the cart into one order per bakery
func (h *Handler) Checkout(c *gin.Context) {
	var input models.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	address, ok := h.deliveryAddress(c, userID, input)
	if !ok {
		return
	}

	placed, err := h.store.Checkout(ctx, store.CheckoutRequest{
		CustomerID:      userID,
		DeliveryAddress: address,
		Note:            strings.TrimSpace(input.Note),
		Now:             h.now(),
	})
	if err != nil {
		h.respondError(c, err, "failed to create order")
		return
	}

	for _, o := range placed {
		h.publish(ctx, events.OrderPlaced, o)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "order placed successfully",
		"orders":  placed,
	})
}

// deliveryAddress picks the address snapshot for the orders: a saved
// address by id, an inline one, or the user's default, in that order.
func (h *Handler) deliveryAddress(c *gin.Context, userID uint, input models.CheckoutInput) (string, bool) {
	ctx := c.Request.Context()

	switch {
	case input.AddressID != nil:
		a, err := h.store.GetAddress(ctx, userID, *input.AddressID)
		if err != nil {
			h.respondStoreError(c, err, "delivery address", "failed to fetch delivery address")
			return "", false
		}
		return a.OneLine(), true

	case input.Address != nil:
		var a models.DeliveryAddress
		input.Address.Apply(&a)
		return a.OneLine(), true
	}

	addresses, err := h.store.ListAddresses(ctx, userID)
	if err != nil {
		h.respondError(c, err, "failed to fetch delivery address")
		return "", false
	}
	for _, a := range addresses {
		if a.IsDefault {
			return a.OneLine(), true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "delivery address is required"})
	return "", false
}
