package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Location represents a Google-Maps-validated place
type Location struct {
	PlaceID          string  `json:"place_id" binding:"required"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address" binding:"required"`
	Latitude         float64 `json:"latitude" binding:"required"`
	Longitude        float64 `json:"longitude" binding:"required"`
}

// Implement driver.Valuer for JSONB storage
func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Implement sql.Scanner for JSONB retrieval
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal Location: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// Branch is a physical club location the mobile app lists in its locator
type Branch struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Phone     string         `gorm:"size:32" json:"phone"`
	Location  Location       `gorm:"type:jsonb" json:"location"`
	OpenHours string         `gorm:"size:255" json:"open_hours"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Branch model
func (Branch) TableName() string {
	return "branch"
}

// BeforeSave hook keeps UpdatedAt current
func (b *Branch) BeforeSave(tx *gorm.DB) error {
	b.UpdatedAt = time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = b.UpdatedAt
	}
	return nil
}

// CreateBranchRequest represents the data needed to create a branch.
// The place ID is re-validated against the Maps API before persisting.
type CreateBranchRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Phone     string `json:"phone" binding:"max=32"`
	PlaceID   string `json:"place_id" binding:"required"`
	OpenHours string `json:"open_hours" binding:"max=255"`
	Active    *bool  `json:"active"`
}
