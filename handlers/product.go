package handlers

import (
	"errors"
	"net/http"

	"bakeryapi/catalog"
	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// GetAllProducts retrieves the storefront listing with ?search, ?category,
// ?min_price, ?max_price, ?in_stock and ?sort applied
func (h *Handler) GetAllProducts(c *gin.Context) {
	q, err := catalog.ParseQuery(c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err, "invalid query")
		return
	}
	h.listProducts(c, q)
}

// GetOwnerProducts lists the signed-in owner's products
func (h *Handler) GetOwnerProducts(c *gin.Context) {
	q, err := catalog.ParseQuery(c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err, "invalid query")
		return
	}
	q.OwnerID = middleware.UserID(c)
	h.listProducts(c, q)
}

func (h *Handler) listProducts(c *gin.Context, q catalog.Query) {
	products, err := h.store.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct retrieves a single product by ID
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondStoreError(c, err, "product", "failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a new product to the owner's bakery
func (h *Handler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkProductInput(c, input) {
		return
	}

	product := models.Product{OwnerID: middleware.UserID(c)}
	applyProductInput(&product, input)
	if err := h.store.CreateProduct(c.Request.Context(), &product); err != nil {
		h.respondError(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "product created successfully",
		"product": product,
	})
}

// UpdateProduct modifies a product the owner created
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id", "product")
	if !ok {
		return
	}

	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, ok := h.ownedProduct(c, id, "not authorized to update this product")
	if !ok {
		return
	}
	if !h.checkProductInput(c, input) {
		return
	}

	applyProductInput(&product, input)
	if err := h.store.UpdateProduct(c.Request.Context(), &product); err != nil {
		h.respondStoreError(c, err, "product", "failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product the owner created
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id", "product")
	if !ok {
		return
	}
	if _, ok := h.ownedProduct(c, id, "not authorized to delete this product"); !ok {
		return
	}

	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondStoreError(c, err, "product", "failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}

// ownedProduct loads a product and checks that the caller owns it. Admins
// may touch any product.
func (h *Handler) ownedProduct(c *gin.Context, id uint, forbidden string) (models.Product, bool) {
	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondStoreError(c, err, "product", "failed to fetch product")
		return product, false
	}
	if product.OwnerID != middleware.UserID(c) && middleware.Role(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden})
		return product, false
	}
	return product, true
}

func (h *Handler) checkProductInput(c *gin.Context, input models.ProductInput) bool {
	if !input.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
		return false
	}
	if input.CategoryID == 0 {
		return true
	}
	if _, err := h.store.GetCategory(c.Request.Context(), input.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category does not exist"})
			return false
		}
		h.respondError(c, err, "failed to fetch category")
		return false
	}
	return true
}

func applyProductInput(p *models.Product, in models.ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.ImageURL = in.ImageURL
}
