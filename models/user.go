package models

import (
	"time"
)

// Role is a marketplace account role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// Auth providers
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a customer, bakery owner or admin account
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:120;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:255" json:"-"` // bcrypt hash, empty for OAuth accounts
	Role       Role      `gorm:"type:varchar(16);not null;default:customer" json:"role"`
	Phone      string    `gorm:"size:32" json:"phone,omitempty"`
	BakeryName string    `gorm:"size:120" json:"bakery_name,omitempty"`
	Address    string    `gorm:"size:255" json:"address,omitempty"`
	Provider   string    `gorm:"size:16;not null;default:local" json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserRegister holds the fields collected by the registration wizard
type UserRegister struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	BakeryName      string `json:"bakery_name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

// UserLogin holds data needed for login
type UserLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordInput starts a password reset
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput completes a password reset
type ResetPasswordInput struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// PasswordReset is a single-use reset token
type PasswordReset struct {
	Token     string     `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint       `gorm:"index;not null" json:"-"`
	ExpiresAt time.Time  `json:"-"`
	UsedAt    *time.Time `json:"-"`
	CreatedAt time.Time  `json:"-"`
}

// AuthResponse is returned by login, registration and OAuth
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
