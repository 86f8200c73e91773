package handlers

import (
	"net/http"

	"bakeryapi/middleware"
	"bakeryapi/models"

	"github.com/gin-gonic/gin"
)

// GetAddresses retrieves all delivery addresses for the authenticated user,
// default first
func (h *Handler) GetAddresses(c *gin.Context) {
	addresses, err := h.store.ListAddresses(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "failed to fetch addresses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// GetAddress retrieves one of the user's addresses
func (h *Handler) GetAddress(c *gin.Context) {
	id, ok := idParam(c, "id", "address")
	if !ok {
		return
	}

	address, err := h.store.GetAddress(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.respondStoreError(c, err, "address", "failed to fetch address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

// CreateAddress saves a new delivery address
func (h *Handler) CreateAddress(c *gin.Context) {
	var input models.DeliveryAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := models.DeliveryAddress{UserID: middleware.UserID(c)}
	input.Apply(&address)
	if err := h.store.CreateAddress(c.Request.Context(), &address); err != nil {
		h.respondError(c, err, "failed to create address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "address created successfully",
		"address": address,
	})
}

// UpdateAddress replaces one of the user's addresses
func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := idParam(c, "id", "address")
	if !ok {
		return
	}

	var input models.DeliveryAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := models.DeliveryAddress{ID: id, UserID: middleware.UserID(c)}
	input.Apply(&address)
	if err := h.store.UpdateAddress(c.Request.Context(), &address); err != nil {
		h.respondStoreError(c, err, "address", "failed to update address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "address updated successfully",
		"address": address,
	})
}

// DeleteAddress removes one of the user's addresses
func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := idParam(c, "id", "address")
	if !ok {
		return
	}

	if err := h.store.DeleteAddress(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.respondStoreError(c, err, "address", "failed to delete address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "address deleted successfully"})
}
