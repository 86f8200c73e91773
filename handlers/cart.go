package handlers

import (
	"context"
	"errors"
	"net/http"

	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// GetCart retrieves the user's cart. Entries added separately for the same
// product come back merged into one line.
func (h *Handler) GetCart(c *gin.Context) {
	h.writeCart(c, http.StatusOK, "")
}

// writeCart re-reads the cart and answers with the merged view.
func (h *Handler) writeCart(c *gin.Context, status int, message string) {
	entries, err := h.store.ListCartEntries(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "failed to fetch cart")
		return
	}
	body := gin.H{"cart": models.NewCartView(entries)}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// inCart returns how many units of a product the user already holds across
// all of their entries.
func (h *Handler) inCart(ctx context.Context, userID, productID uint) (int, error) {
	entries, err := h.store.ListCartEntries(ctx, userID)
	if err != nil {
		return 0, err
	}
	qty := 0
	for _, e := range entries {
		if e.ProductID == productID && e.Quantity > 0 {
			qty += e.Quantity
		}
	}
	return qty, nil
}

// AddToCart records one add-to-cart action
func (h *Handler) AddToCart(c *gin.Context) {
	var input models.CartEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	product, err := h.store.GetProduct(ctx, input.ProductID)
	if err != nil {
		h.respondStoreError(c, err, "product", "database error")
		return
	}

	held, err := h.inCart(ctx, userID, product.ID)
	if err != nil {
		h.respondError(c, err, "database error")
		return
	}
	if held+input.Quantity > product.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough stock available"})
		return
	}

	entry := models.CartEntry{UserID: userID, ProductID: product.ID, Quantity: input.Quantity}
	if err := h.store.AddCartEntry(ctx, &entry); err != nil {
		h.respondStoreError(c, err, "product", "failed to add item to cart")
		return
	}

	h.writeCart(c, http.StatusCreated, "item added to cart successfully")
}

// SetCartQuantity replaces the quantity of a product in the cart. Zero
// removes it.
func (h *Handler) SetCartQuantity(c *gin.Context) {
	productID, ok := idParam(c, "productId", "product")
	if !ok {
		return
	}

	var input models.CartQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	product, err := h.store.GetProduct(ctx, productID)
	if err != nil {
		h.respondStoreError(c, err, "product", "database error")
		return
	}
	if *input.Quantity > product.Stock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough stock available"})
		return
	}

	if err := h.store.SetCartQuantity(ctx, middleware.UserID(c), productID, *input.Quantity); err != nil {
		h.respondStoreError(c, err, "product", "failed to update cart item")
		return
	}

	h.writeCart(c, http.StatusOK, "cart updated successfully")
}

// RemoveCartEntry deletes one raw entry
func (h *Handler) RemoveCartEntry(c *gin.Context) {
	id, ok := idParam(c, "id", "cart entry")
	if !ok {
		return
	}

	if err := h.store.DeleteCartEntry(c.Request.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found in cart"})
			return
		}
		h.respondError(c, err, "failed to remove item from cart")
		return
	}

	h.writeCart(c, http.StatusOK, "item removed from cart successfully")
}

// RemoveCartProduct drops every entry for a product, i.e. the whole merged
// line
func (h *Handler) RemoveCartProduct(c *gin.Context) {
	productID, ok := idParam(c, "productId", "product")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	held, err := h.inCart(ctx, userID, productID)
	if err != nil {
		h.respondError(c, err, "database error")
		return
	}
	if held == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found in cart"})
		return
	}

	if err := h.store.SetCartQuantity(ctx, userID, productID, 0); err != nil {
		h.respondStoreError(c, err, "product", "failed to remove item from cart")
		return
	}

	h.writeCart(c, http.StatusOK, "item removed from cart successfully")
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.store.ClearCart(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.respondError(c, err, "failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared successfully"})
}
