package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Medicine is a catalog entry the mobile app displays and the WooCommerce
// shop sells. Attributes holds free-form presentation data (dosage tables,
// ingredient lists) edited in the admin panel.
type Medicine struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Slug         string         `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	Price        float64        `gorm:"type:decimal(10,2)" json:"price"`
	WooProductID uint           `gorm:"index" json:"woo_product_id"`
	ImageURL     string         `gorm:"size:512" json:"image_url"`
	Attributes   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"attributes"`
	Published    bool           `gorm:"not null;default:true" json:"published"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Medicine model
func (Medicine) TableName() string {
	return "medicine"
}

// BeforeSave hook keeps UpdatedAt current
func (m *Medicine) BeforeSave(tx *gorm.DB) error {
	m.UpdatedAt = time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.UpdatedAt
	}
	return nil
}

// CreateMedicineRequest represents the data needed to create a catalog entry
type CreateMedicineRequest struct {
	Name         string         `json:"name" binding:"required,max=255"`
	Slug         string         `json:"slug" binding:"required,max=255"`
	Description  string         `json:"description"`
	Price        float64        `json:"price" binding:"min=0"`
	WooProductID uint           `json:"woo_product_id"`
	Attributes   datatypes.JSON `json:"attributes"`
	Published    *bool          `json:"published"`
}

// UpdateMedicineRequest represents the mutable fields of a catalog entry
type UpdateMedicineRequest struct {
	Name         *string         `json:"name" binding:"omitempty,max=255"`
	Description  *string         `json:"description"`
	Price        *float64        `json:"price" binding:"omitempty,min=0"`
	WooProductID *uint           `json:"woo_product_id"`
	Attributes   *datatypes.JSON `json:"attributes"`
	Published    *bool           `json:"published"`
}
