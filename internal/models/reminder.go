package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScheduledType identifies which leg of the reminder fan-out a row belongs to
type ScheduledType string

const (
	ReminderImmediate ScheduledType = "immediate"
	ReminderDayBefore ScheduledType = "day_before"
	ReminderOnDate    ScheduledType = "on_date"
)

// ReminderStatus is the delivery state of a scheduled notification.
// Transitions only move forward: pending -> sending -> sent|failed.
// "sending" is the claim state held while a dispatch invocation owns the
// row; a resolved row is never re-queued.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSending   ReminderStatus = "sending"
	ReminderSent      ReminderStatus = "sent"
	ReminderFailed    ReminderStatus = "failed"
	ReminderCancelled ReminderStatus = "cancelled"
)

// ScheduledNotification is a single medication reminder waiting for (or
// already past) its dispatch day
type ScheduledNotification struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	CheckInID      uint           `gorm:"not null;index" json:"check_in_id"`
	MedicationName string         `gorm:"size:100;not null" json:"medication_name"`
	ScheduledDate  string         `gorm:"size:10;not null;index:idx_reminder_status_date" json:"scheduled_date"`
	ScheduledType  ScheduledType  `gorm:"size:20;not null" json:"scheduled_type"`
	Title          string         `gorm:"size:255" json:"title"`
	Body           string         `gorm:"type:text" json:"body"`
	Data           datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"data"`
	Status         ReminderStatus `gorm:"size:20;not null;default:'pending';index:idx_reminder_status_date" json:"status"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	ErrorMessage   string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the ScheduledNotification model
func (ScheduledNotification) TableName() string {
	return "scheduled_notification"
}

// BeforeCreate hook sets the creation timestamp
func (n *ScheduledNotification) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}

// IsResolved reports whether the reminder reached a terminal state
func (n *ScheduledNotification) IsResolved() bool {
	return n.Status == ReminderSent || n.Status == ReminderFailed || n.Status == ReminderCancelled
}

// NotificationLog records one push delivery attempt (manual or scheduled),
// successful or not. Purged by the retention job.
type NotificationLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Title        string    `gorm:"size:255" json:"title"`
	Body         string    `gorm:"type:text" json:"body"`
	Success      bool      `gorm:"not null" json:"success"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the NotificationLog model
func (NotificationLog) TableName() string {
	return "notification_log"
}

// WebhookLog records one inbound WooCommerce webhook delivery.
// Purged by the retention job.
type WebhookLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"size:100;index" json:"topic"`
	Payload   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	SourceIP  string         `gorm:"size:64" json:"source_ip"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the WebhookLog model
func (WebhookLog) TableName() string {
	return "webhook_log"
}
