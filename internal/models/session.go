package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionDuration is the length of time an admin session remains valid
const SessionDuration = time.Hour * 24 * 7 // 1 week

// Session represents an authenticated admin-panel session
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"-"`
	Username  string    `gorm:"size:30;index" json:"-"`
	IPAddress string    `gorm:"size:64" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"-"`
}

// BeforeCreate hook for sessions
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(SessionDuration)
	}
	return nil
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AdminAccount is an operator of the admin panel
type AdminAccount struct {
	Username   string         `gorm:"primaryKey;size:30;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPass string         `gorm:"size:255;not null" json:"-"`
	LastLogin  time.Time      `json:"last_login"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the AdminAccount model
func (AdminAccount) TableName() string {
	return "admin_account"
}

// BeforeCreate hook fills timestamps
func (a *AdminAccount) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	return nil
}

// LoginLog records an admin login attempt for auditing
type LoginLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:30;index" json:"username"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	Success   bool      `gorm:"not null" json:"success"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the LoginLog model
func (LoginLog) TableName() string {
	return "login_log"
}

// LoginRequest represents the data needed for admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
