package handlers

import (
	"net/http"
	"strings"
	"time"

	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
)

// CreateAdvert files a paid promotion request for one of the owner's
// products. The amount is quoted from the configured daily rate.
func (h *Handler) CreateAdvert(c *gin.Context) {
	var input models.AdvertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, ok := h.ownedProduct(c, input.ProductID, "not authorized to advertise this product")
	if !ok {
		return
	}

	advert := models.AdvertRequest{
		OwnerID:              product.OwnerID,
		ProductID:            product.ID,
		Days:                 input.Days,
		DailyRate:            h.opts.AdvertDailyRate,
		Amount:               models.AdvertQuote(h.opts.AdvertDailyRate, input.Days),
		PaymentScreenshotURL: input.PaymentScreenshotURL,
		Status:               models.AdvertPending,
	}
	if err := h.store.CreateAdvert(c.Request.Context(), &advert); err != nil {
		h.respondError(c, err, "failed to create advert request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "advert request submitted",
		"advert":  advert,
	})
}

// GetOwnerAdverts lists the owner's advert requests
func (h *Handler) GetOwnerAdverts(c *gin.Context) {
	h.listAdverts(c, store.AdvertFilter{OwnerID: middleware.UserID(c)})
}

// GetAdverts lists every advert request, optionally by ?status=
func (h *Handler) GetAdverts(c *gin.Context) {
	f := store.AdvertFilter{Status: models.AdvertStatus(strings.ToLower(c.Query("status")))}
	switch f.Status {
	case "", models.AdvertPending, models.AdvertApproved, models.AdvertRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	h.listAdverts(c, f)
}

func (h *Handler) listAdverts(c *gin.Context, f store.AdvertFilter) {
	adverts, err := h.store.ListAdverts(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err, "failed to fetch adverts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"adverts": adverts})
}

// DecideAdvert approves or rejects a pending request. Approval starts the
// campaign immediately.
func (h *Handler) DecideAdvert(c *gin.Context) {
	id, ok := idParam(c, "id", "advert")
	if !ok {
		return
	}

	var input models.AdvertDecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	advert, err := h.store.GetAdvert(ctx, id)
	if err != nil {
		h.respondStoreError(c, err, "advert", "failed to fetch advert")
		return
	}
	if advert.Status != models.AdvertPending {
		c.JSON(http.StatusConflict, gin.H{"error": "advert has already been " + string(advert.Status)})
		return
	}

	advert.ReviewNote = strings.TrimSpace(input.Note)
	if input.Approve {
		start := h.now()
		end := start.Add(time.Duration(advert.Days) * 24 * time.Hour)
		advert.Status = models.AdvertApproved
		advert.StartsAt = &start
		advert.EndsAt = &end
	} else {
		advert.Status = models.AdvertRejected
	}

	if err := h.store.UpdateAdvert(ctx, &advert); err != nil {
		h.respondStoreError(c, err, "advert", "failed to update advert")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "advert " + string(advert.Status),
		"advert":  advert,
	})
}

// GetActiveAdverts lists the campaigns running now, for the storefront
// banner
func (h *Handler) GetActiveAdverts(c *gin.Context) {
	adverts, err := h.store.ListActiveAdverts(c.Request.Context(), h.now())
	if err != nil {
		h.respondError(c, err, "failed to fetch adverts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"adverts": adverts})
}
