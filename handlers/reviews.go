package handlers

import (
	"errors"
	"net/http"
	"strings"

	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// GetReviews lists a product's reviews with the average rating
func (h *Handler) GetReviews(c *gin.Context) {
	id, ok := idParam(c, "id", "product")
	if !ok {
		return
	}

	reviews, err := h.store.ListReviews(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, models.NewReviewList(reviews))
}

// CreateReview lets a customer rate a product they have received
func (h *Handler) CreateReview(c *gin.Context) {
	productID, ok := idParam(c, "id", "product")
	if !ok {
		return
	}

	var input models.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	if _, err := h.store.GetProduct(ctx, productID); err != nil {
		h.respondStoreError(c, err, "product", "failed to fetch product")
		return
	}

	bought, err := h.store.HasCompletedOrderForProduct(ctx, userID, productID)
	if err != nil {
		h.respondError(c, err, "failed to check orders")
		return
	}
	if !bought {
		c.JSON(http.StatusForbidden, gin.H{"error": "only customers with a completed order can review this product"})
		return
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	if err := h.store.CreateReview(ctx, &review); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "you have already reviewed this product"})
			return
		}
		h.respondError(c, err, "failed to create review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "review created successfully",
		"review":  review,
	})
}
