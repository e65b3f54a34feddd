package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"clubcare/internal/metrics"
	"clubcare/internal/models"
	"clubcare/internal/utils"

	"gorm.io/gorm"
)

// DispatchResult describes what happened to one reminder during a dispatch run
type DispatchResult struct {
	ReminderID    uint   `json:"reminder_id"`
	UserID        uint   `json:"user_id"`
	ScheduledType string `json:"scheduled_type"`
	ScheduledDate string `json:"scheduled_date"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

// DispatchSummary aggregates one dispatch invocation
type DispatchSummary struct {
	Processed int              `json:"processed"`
	Sent      int              `json:"sent"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	DryRun    bool             `json:"dry_run,omitempty"`
	Results   []DispatchResult `json:"results"`
}

// claimStaleAfter bounds how long a reminder may sit in sending before a
// later run treats the claim as abandoned (a crashed or deadline-killed
// invocation never reaches markSent/markFailed)
const claimStaleAfter = 15 * time.Minute

// DispatchService sends due pending reminders through the push gateway
type DispatchService struct {
	db     *gorm.DB
	pusher Pusher
}

// NewDispatchService creates a dispatch job runner
func NewDispatchService(db *gorm.DB, pusher Pusher) *DispatchService {
	return &DispatchService{db: db, pusher: pusher}
}

// ProcessPending scans reminders with status pending and a scheduled date on
// or before today, earliest-due and earliest-created first, and pushes each
// one. Every reminder is claimed with an atomic pending->sending update
// before sending, so an overlapping invocation cannot double-send; a lost
// claim is counted as skipped. Failures are terminal: the row is marked
// failed and never retried automatically.
//
// With dryRun set, nothing is claimed, sent or written; each result reports
// the outcome the reminder would have had.
func (s *DispatchService) ProcessPending(ctx context.Context, today time.Time, dryRun bool) (*DispatchSummary, error) {
	summary := &DispatchSummary{DryRun: dryRun, Results: []DispatchResult{}}
	todayStr := utils.FormatDay(today)

	if !dryRun {
		if s.pusher == nil {
			return nil, fmt.Errorf("cannot dispatch reminders: %w", ErrPushUnavailable)
		}
		if err := s.reclaimStale(); err != nil {
			return nil, err
		}
	}

	var due []models.ScheduledNotification
	if err := s.db.
		Where("status = ? AND scheduled_date <= ?", models.ReminderPending, todayStr).
		Order("scheduled_date asc, created_at asc").
		Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending reminders: %w", err)
	}

	for i := range due {
		reminder := &due[i]
		summary.Processed++
		metrics.RemindersProcessed.Inc()

		result := DispatchResult{
			ReminderID:    reminder.ID,
			UserID:        reminder.UserID,
			ScheduledType: string(reminder.ScheduledType),
			ScheduledDate: reminder.ScheduledDate,
		}

		if dryRun {
			status, reason, err := s.predictOutcome(reminder)
			if err != nil {
				return nil, fmt.Errorf("failed to load user for reminder %d: %w", reminder.ID, err)
			}
			result.Status, result.Error = status, reason
			summary.Skipped++
			metrics.RemindersSkipped.Inc()
			summary.Results = append(summary.Results, result)
			continue
		}

		// Claim step: only the invocation that flips pending->sending may
		// touch this reminder
		claim := s.db.Model(&models.ScheduledNotification{}).
			Where("id = ? AND status = ?", reminder.ID, models.ReminderPending).
			Update("status", models.ReminderSending)
		if claim.Error != nil {
			return nil, fmt.Errorf("failed to claim reminder %d: %w", reminder.ID, claim.Error)
		}
		if claim.RowsAffected == 0 {
			result.Status = "skipped"
			result.Error = "claimed by concurrent invocation"
			summary.Skipped++
			metrics.RemindersSkipped.Inc()
			summary.Results = append(summary.Results, result)
			continue
		}

		user, failReason, err := s.resolveRecipient(reminder.UserID)
		if err != nil {
			// Infrastructure trouble is not a terminal recipient condition:
			// release the claim so the next run retries this reminder
			if uerr := s.db.Model(reminder).Update("status", models.ReminderPending).Error; uerr != nil {
				log.Printf("Error: failed to release claim on reminder %d: %v", reminder.ID, uerr)
			}
			return nil, fmt.Errorf("failed to load user for reminder %d: %w", reminder.ID, err)
		}
		if failReason != "" {
			s.markFailed(reminder, failReason)
			result.Status = string(models.ReminderFailed)
			result.Error = failReason
			summary.Failed++
			metrics.RemindersFailed.Inc()
			summary.Results = append(summary.Results, result)
			continue
		}

		pushErr := s.pusher.Push(ctx, user.FCMToken, reminder.Title, reminder.Body, map[string]string{
			"reminderId": fmt.Sprintf("%d", reminder.ID),
			"type":       string(reminder.ScheduledType),
			"medication": reminder.MedicationName,
		})
		s.logAttempt(reminder.UserID, reminder.Title, reminder.Body, pushErr)

		if pushErr != nil {
			s.markFailed(reminder, pushErr.Error())
			result.Status = string(models.ReminderFailed)
			result.Error = pushErr.Error()
			summary.Failed++
			metrics.RemindersFailed.Inc()
		} else {
			s.markSent(reminder)
			result.Status = string(models.ReminderSent)
			summary.Sent++
			metrics.RemindersSent.Inc()
		}
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

// reclaimStale returns reminders stuck in sending to the queue. Their claim
// updates sending's updated_at, so anything older than the threshold belongs
// to an invocation that died mid-send.
func (s *DispatchService) reclaimStale() error {
	res := s.db.Model(&models.ScheduledNotification{}).
		Where("status = ? AND updated_at <= ?",
			models.ReminderSending, time.Now().UTC().Add(-claimStaleAfter)).
		Update("status", models.ReminderPending)
	if res.Error != nil {
		return fmt.Errorf("failed to reclaim stale reminders: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("Warning: reclaimed %d reminders stuck in sending", res.RowsAffected)
	}
	return nil
}

// resolveRecipient loads the reminder's user and classifies the terminal
// skip conditions. An empty reason means the user can be pushed to; a
// non-nil error means the lookup itself failed and nothing is terminal.
func (s *DispatchService) resolveRecipient(userID uint) (*models.User, string, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "User not found", nil
		}
		return nil, "", err
	}
	if user.FCMToken == "" {
		return nil, "No FCM token", nil
	}
	if !user.IsActive() {
		return nil, "User inactive", nil
	}
	return &user, "", nil
}

// predictOutcome classifies a reminder without writing anything (dry run)
func (s *DispatchService) predictOutcome(reminder *models.ScheduledNotification) (status, reason string, err error) {
	_, failReason, err := s.resolveRecipient(reminder.UserID)
	if err != nil {
		return "", "", err
	}
	if failReason != "" {
		return "would_fail", failReason, nil
	}
	return "would_send", "", nil
}

func (s *DispatchService) markSent(reminder *models.ScheduledNotification) {
	now := time.Now().UTC()
	if err := s.db.Model(reminder).Updates(map[string]interface{}{
		"status":  models.ReminderSent,
		"sent_at": now,
	}).Error; err != nil {
		log.Printf("Error: failed to mark reminder %d sent: %v", reminder.ID, err)
	}
}

func (s *DispatchService) markFailed(reminder *models.ScheduledNotification, reason string) {
	if err := s.db.Model(reminder).Updates(map[string]interface{}{
		"status":        models.ReminderFailed,
		"error_message": reason,
	}).Error; err != nil {
		log.Printf("Error: failed to mark reminder %d failed: %v", reminder.ID, err)
	}
}

// logAttempt records the delivery attempt; failures here are logged only
func (s *DispatchService) logAttempt(userID uint, title, body string, pushErr error) {
	entry := models.NotificationLog{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Success:   pushErr == nil,
		CreatedAt: time.Now().UTC(),
	}
	if pushErr != nil {
		entry.ErrorMessage = pushErr.Error()
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to record notification log for user %d: %v", userID, err)
	}
}
