package models

import (
	"time"

	"bakeryapi/orders"

	"github.com/shopspring/decimal"
)

// Order is what one bakery has to fulfil for one customer checkout
type Order struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	OrderNumber      string               `gorm:"size:40;uniqueIndex;not null" json:"order_number"`
	CustomerID       uint                 `gorm:"index;not null" json:"customer_id"`
	OwnerID          uint                 `gorm:"index;not null" json:"owner_id"`
	Status           orders.Status        `gorm:"type:varchar(16);index;not null" json:"status"`
	PaymentStatus    orders.PaymentStatus `gorm:"type:varchar(16);not null" json:"payment_status"`
	PaymentReference string               `gorm:"size:512" json:"payment_reference,omitempty"`
	TotalAmount      decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	DeliveryAddress  string               `gorm:"type:text" json:"delivery_address"`
	Note             string               `gorm:"type:text" json:"note,omitempty"`
	Items            []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// OrderItem is a merged cart line frozen at checkout
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Name      string          `gorm:"size:160;not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

// StatusOf is the accessor used for OrderCenter tab partitioning.
func StatusOf(o Order) orders.Status { return o.Status }

// CheckoutInput selects a saved address or provides one inline
type CheckoutInput struct {
	AddressID *uint                 `json:"address_id"`
	Address   *DeliveryAddressInput `json:"address"`
	Note      string                `json:"note"`
}

// StatusInput is used by owners and admins to move an order along
type StatusInput struct {
	Status string `json:"status" binding:"required"`
}

// PaymentProofInput is a customer's payment screenshot or transfer reference
type PaymentProofInput struct {
	Reference string `json:"reference" binding:"required"`
}

// PaymentDecisionInput is an owner's verdict on a submitted payment
type PaymentDecisionInput struct {
	Decision string `json:"decision" binding:"required"`
}

// PaymentWebhookInput is posted by the payment gateway
type PaymentWebhookInput struct {
	OrderNumber   string          `json:"orderId" binding:"required"`
	TransactionID string          `json:"transactionId" binding:"required"`
	Status        string          `json:"status" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// OrderFilter narrows order listings
type OrderFilter struct {
	CustomerID uint
	OwnerID    uint
	Status     orders.Status
	Page       int
	Limit      int
}

// OrderList is an order listing with per-tab counts
type OrderList struct {
	Orders []Order             `json:"orders"`
	Counts map[orders.Tab]int `json:"counts"`
}

// Pagination describes a paginated admin listing
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes the page count
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
