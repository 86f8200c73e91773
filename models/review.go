package models

import (
	"time"
)

// Review is a customer's rating of a product they received
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"uniqueIndex:idx_review_product_user;not null" json:"product_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_product_user;not null" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewInput is posted by customers
type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ReviewList carries reviews with their average rating
type ReviewList struct {
	Reviews []Review `json:"reviews"`
	Average float64  `json:"average"`
	Count   int      `json:"count"`
}

// NewReviewList computes the average rating
func NewReviewList(reviews []Review) ReviewList {
	if reviews == nil {
		reviews = []Review{}
	}
	l := ReviewList{Reviews: reviews, Count: len(reviews)}
	if l.Count == 0 {
		return l
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	l.Average = float64(sum) / float64(l.Count)
	return l
}
