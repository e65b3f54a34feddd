package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"clubcare/internal/models"
	"clubcare/internal/utils"

	"gorm.io/gorm"
)

// ReminderService fans a check-in's next-due date out into scheduled
// notification rows. Callers treat scheduling as a best-effort side effect
// of the check-in: errors are returned for logging but must never fail the
// check-in response.
type ReminderService struct {
	db     *gorm.DB
	pusher Pusher
}

// NewReminderService creates a reminder scheduler
func NewReminderService(db *gorm.DB, pusher Pusher) *ReminderService {
	return &ReminderService{db: db, pusher: pusher}
}

// ScheduleReminders creates up to three reminders for a check-in:
// an immediate confirmation (pushed inline and stored already sent), a
// day-before reminder and an on-date reminder. Returns the scheduled dates
// for the caller's response.
//
// The immediate row is recorded as sent even when the inline push fails;
// "logged" is the success condition for that leg, the push outcome only
// lands in error_message.
func (s *ReminderService) ScheduleReminders(ctx context.Context, userID, checkInID uint, medicationName string, nextDue time.Time, fcmToken string) ([]string, error) {
	today := utils.Today()
	nextDue = utils.TruncateToDay(nextDue)
	dayBefore := utils.AddDays(nextDue, -1)

	dueStr := utils.FormatDay(nextDue)
	var scheduled []string

	// Immediate confirmation, pushed right now
	title := "Medication logged"
	body := fmt.Sprintf("Your %s dose is logged. Next dose on %s.", medicationName, dueStr)

	// A server without FCM credentials has a nil pusher; the check-in must
	// still go through, so the immediate leg degrades to a recorded failure
	pushErr := ErrPushUnavailable
	if s.pusher != nil {
		pushErr = s.pusher.Push(ctx, fcmToken, title, body, map[string]string{
			"type":       string(models.ReminderImmediate),
			"medication": medicationName,
		})
	}
	if pushErr != nil {
		log.Printf("Warning: immediate reminder push failed for user %d: %v", userID, pushErr)
	}

	now := time.Now().UTC()
	immediate := models.ScheduledNotification{
		UserID:         userID,
		CheckInID:      checkInID,
		MedicationName: medicationName,
		ScheduledDate:  utils.FormatDay(today),
		ScheduledType:  models.ReminderImmediate,
		Title:          title,
		Body:           body,
		Status:         models.ReminderSent,
		SentAt:         &now,
		Data:           reminderData(medicationName, dueStr),
	}
	if pushErr != nil {
		immediate.ErrorMessage = pushErr.Error()
	}
	if err := s.db.Create(&immediate).Error; err != nil {
		return scheduled, fmt.Errorf("failed to store immediate reminder: %w", err)
	}
	scheduled = append(scheduled, immediate.ScheduledDate)

	s.logPush(userID, title, body, pushErr)

	// Day-before reminder, only when there is still a full day to go
	if dayBefore.After(today) {
		reminder := models.ScheduledNotification{
			UserID:         userID,
			CheckInID:      checkInID,
			MedicationName: medicationName,
			ScheduledDate:  utils.FormatDay(dayBefore),
			ScheduledType:  models.ReminderDayBefore,
			Title:          "Medication reminder",
			Body:           fmt.Sprintf("Your next %s dose is due tomorrow (%s).", medicationName, dueStr),
			Status:         models.ReminderPending,
			Data:           reminderData(medicationName, dueStr),
		}
		if err := s.db.Create(&reminder).Error; err != nil {
			return scheduled, fmt.Errorf("failed to store day-before reminder: %w", err)
		}
		scheduled = append(scheduled, reminder.ScheduledDate)
	}

	// On-date reminder for any due date not already in the past
	if !nextDue.Before(today) {
		reminder := models.ScheduledNotification{
			UserID:         userID,
			CheckInID:      checkInID,
			MedicationName: medicationName,
			ScheduledDate:  dueStr,
			ScheduledType:  models.ReminderOnDate,
			Title:          "Medication due today",
			Body:           fmt.Sprintf("Your %s dose is due today.", medicationName),
			Status:         models.ReminderPending,
			Data:           reminderData(medicationName, dueStr),
		}
		if err := s.db.Create(&reminder).Error; err != nil {
			return scheduled, fmt.Errorf("failed to store on-date reminder: %w", err)
		}
		scheduled = append(scheduled, reminder.ScheduledDate)
	}

	return scheduled, nil
}

// logPush records a delivery attempt; failures here are logged only
func (s *ReminderService) logPush(userID uint, title, body string, pushErr error) {
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

func reminderData(medicationName, dueDate string) []byte {
	data, _ := json.Marshal(map[string]string{
		"medication": medicationName,
		"dueDate":    dueDate,
	})
	return data
}
