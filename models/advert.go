package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvertStatus tracks admin review of a paid placement
type AdvertStatus string

const (
	AdvertPending  AdvertStatus = "pending"
	AdvertApproved AdvertStatus = "approved"
	AdvertRejected AdvertStatus = "rejected"
)

// AdvertRequest is an owner's request to promote a product, billed per day
type AdvertRequest struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	OwnerID              uint            `gorm:"index;not null" json:"owner_id"`
	ProductID            uint            `gorm:"index;not null" json:"product_id"`
	Days                 int             `gorm:"not null" json:"days"`
	DailyRate            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"daily_rate"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentScreenshotURL string          `gorm:"size:512;not null" json:"payment_screenshot_url"`
	Status               AdvertStatus    `gorm:"type:varchar(16);index;not null" json:"status"`
	ReviewNote           string          `gorm:"type:text" json:"review_note,omitempty"`
	StartsAt             *time.Time      `json:"starts_at,omitempty"`
	EndsAt               *time.Time      `json:"ends_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Active reports whether the advert is approved and running at t.
func (a AdvertRequest) Active(t time.Time) bool {
	if a.Status != AdvertApproved || a.StartsAt == nil || a.EndsAt == nil {
		return false
	}
	return !t.Before(*a.StartsAt) && t.Before(*a.EndsAt)
}

// AdvertInput is posted by owners
type AdvertInput struct {
	ProductID            uint   `json:"product_id" binding:"required"`
	Days                 int    `json:"days" binding:"required,min=1,max=90"`
	PaymentScreenshotURL string `json:"payment_screenshot_url" binding:"required,url"`
}

// AdvertDecisionInput is an admin's verdict
type AdvertDecisionInput struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// AdvertQuote is the amount billed for days at rate.
func AdvertQuote(rate decimal.Decimal, days int) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(days)))
}
