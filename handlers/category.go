package handlers

import (
	"errors"
	"net/http"
	"strings"

	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// GetCategories retrieves all categories in display order
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a new category
func (h *Handler) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{Name: strings.TrimSpace(input.Name), DisplayOrder: input.DisplayOrder}
	if err := h.store.CreateCategory(c.Request.Context(), &category); err != nil {
		h.respondStoreError(c, err, "category", "failed to create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "category created successfully",
		"category": category,
	})
}

// UpdateCategory renames or reorders a category
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "category")
	if !ok {
		return
	}

	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{ID: id, Name: strings.TrimSpace(input.Name), DisplayOrder: input.DisplayOrder}
	if err := h.store.UpdateCategory(c.Request.Context(), &category); err != nil {
		h.respondStoreError(c, err, "category", "failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "category updated successfully",
		"category": category,
	})
}

// DeleteCategory removes a category no product uses
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "category")
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "category is in use by products"})
			return
		}
		h.respondStoreError(c, err, "category", "failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted successfully"})
}
