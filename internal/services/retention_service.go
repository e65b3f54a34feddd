package services

import (
	"fmt"
	"time"

	"clubcare/internal/metrics"
	"clubcare/internal/models"

	"gorm.io/gorm"
)

// RetentionSummary reports what one retention run deleted
type RetentionSummary struct {
	Skipped          bool  `json:"skipped"`
	NotificationLogs int64 `json:"notification_logs_deleted"`
	WebhookLogs      int64 `json:"webhook_logs_deleted"`
	Reminders        int64 `json:"reminders_deleted"`
}

// RetentionService purges old log and reminder rows. It is triggered every
// hour by the cron endpoint but only deletes during the configured cleanup
// hour (UTC); other invocations report skipped.
type RetentionService struct {
	db *gorm.DB
}

// NewRetentionService creates a retention job runner
func NewRetentionService(db *gorm.DB) *RetentionService {
	return &RetentionService{db: db}
}

// PurgeOld deletes notification logs, webhook logs and resolved reminders
// created at or before now - retentionDays. Pending reminders are never
// purged regardless of age.
func (s *RetentionService) PurgeOld(now time.Time, retentionDays, cleanupHour int) (*RetentionSummary, error) {
	summary := &RetentionSummary{}

	if now.UTC().Hour() != cleanupHour {
		summary.Skipped = true
		return summary, nil
	}

	cutoff := now.UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	res := s.db.Where("created_at <= ?", cutoff).Delete(&models.NotificationLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to purge notification logs: %w", res.Error)
	}
	summary.NotificationLogs = res.RowsAffected
	metrics.RetentionDeleted.WithLabelValues("notification_log").Add(float64(res.RowsAffected))

	res = s.db.Where("created_at <= ?", cutoff).Delete(&models.WebhookLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to purge webhook logs: %w", res.Error)
	}
	summary.WebhookLogs = res.RowsAffected
	metrics.RetentionDeleted.WithLabelValues("webhook_log").Add(float64(res.RowsAffected))

	res = s.db.
		Where("status IN ? AND created_at <= ?",
			[]models.ReminderStatus{models.ReminderSent, models.ReminderFailed, models.ReminderCancelled},
			cutoff).
		Delete(&models.ScheduledNotification{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to purge reminders: %w", res.Error)
	}
	summary.Reminders = res.RowsAffected
	metrics.RetentionDeleted.WithLabelValues("scheduled_notification").Add(float64(res.RowsAffected))

	return summary, nil
}
