package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMedicationName is used when a check-in does not name a medication
const DefaultMedicationName = "default"

// CheckIn records that a user took a medication on a given calendar day.
// The (user_id, date, medication_name) tuple is unique: a second check-in
// for the same day and medication is treated as a duplicate, not an error.
type CheckIn struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID       string    `gorm:"size:36;uniqueIndex" json:"public_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_checkin_user_date_med" json:"user_id"`
	Date           string    `gorm:"size:10;not null;uniqueIndex:idx_checkin_user_date_med" json:"date"`
	MedicationName string    `gorm:"size:100;not null;default:'default';uniqueIndex:idx_checkin_user_date_med" json:"medication_name"`
	NextDueDate    string    `gorm:"size:10" json:"next_due_date,omitempty"`
	DeviceInfo     string    `gorm:"size:255" json:"device_info,omitempty"`
	IPAddress      string    `gorm:"size:64" json:"ip_address,omitempty"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the CheckIn model
func (CheckIn) TableName() string {
	return "check_in"
}

// BeforeCreate hook fills generated and defaulted fields
func (ci *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if ci.PublicID == "" {
		ci.PublicID = uuid.NewString()
	}
	if ci.MedicationName == "" {
		ci.MedicationName = DefaultMedicationName
	}
	if ci.CreatedAt.IsZero() {
		ci.CreatedAt = time.Now().UTC()
	}
	return nil
}

// CheckInRequest represents the body of the check-in endpoint.
// Exactly one of UserID, WpUserID or Email must identify the user.
type CheckInRequest struct {
	UserID         uint   `json:"userId"`
	WpUserID       uint   `json:"wpUserId"`
	Email          string `json:"email" binding:"omitempty,email"`
	MedicationName string `json:"medicationName" binding:"max=100"`
	NextDueDate    string `json:"nextDueDate"`
	DeviceInfo     string `json:"deviceInfo" binding:"max=255"`
}
