package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus represents the activity state of an app user
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User represents a member of the club as seen by the mobile app.
// WpUserID links the record back to the WordPress/WooCommerce account.
type User struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	WpUserID       uint           `gorm:"index" json:"wp_user_id"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name           string         `gorm:"size:100" json:"name"`
	FCMToken       string         `gorm:"type:text" json:"-"`
	Status         UserStatus     `gorm:"size:20;not null;default:'active'" json:"status"`
	MembershipTier string         `gorm:"size:50" json:"membership_tier"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "app_user"
}

// BeforeCreate hook is called before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.Status == "" {
		u.Status = UserActive
	}
	return nil
}

// BeforeSave hook keeps UpdatedAt current
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// IsActive reports whether the user may receive pushes
func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// CreateUserRequest represents the data needed to create a new app user
type CreateUserRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Name           string `json:"name" binding:"max=100"`
	WpUserID       uint   `json:"wp_user_id"`
	MembershipTier string `json:"membership_tier" binding:"max=50"`
}

// UpdateUserRequest represents the mutable fields of an app user
type UpdateUserRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	Status         *string `json:"status" binding:"omitempty,oneof=active inactive"`
	MembershipTier *string `json:"membership_tier" binding:"omitempty,max=50"`
}

// RegisterTokenRequest is sent by the mobile app to attach an FCM token
type RegisterTokenRequest struct {
	UserID   uint   `json:"userId"`
	WpUserID uint   `json:"wpUserId"`
	Email    string `json:"email" binding:"omitempty,email"`
	FCMToken string `json:"fcmToken" binding:"required"`
}
