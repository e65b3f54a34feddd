package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubcare/internal/models"
	"clubcare/internal/utils"

	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email, token string, status models.UserStatus) *models.User {
	t.Helper()
	user := models.User{Email: email, FCMToken: token, Status: status}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return &user
}

func seedReminder(t *testing.T, db *gorm.DB, userID uint, date string, status models.ReminderStatus, createdAt time.Time) *models.ScheduledNotification {
	t.Helper()
	reminder := models.ScheduledNotification{
		UserID:         userID,
		CheckInID:      1,
		MedicationName: "vitamin-d",
		ScheduledDate:  date,
		ScheduledType:  models.ReminderOnDate,
		Title:          "Medication due today",
		Body:           "Your vitamin-d dose is due today.",
		Status:         status,
		CreatedAt:      createdAt,
	}
	if err := db.Create(&reminder).Error; err != nil {
		t.Fatalf("failed to seed reminder: %v", err)
	}
	return &reminder
}

func TestProcessPendingSendsDueRemindersInOrder(t *testing.T) {
	db := newTestDB(t)
	pusher := &fakePusher{}
	svc := NewDispatchService(db, pusher)

	today := utils.Today()
	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)

	base := time.Now().UTC().Add(-time.Hour)
	late := seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderPending, base.Add(time.Minute))
	early := seedReminder(t, db, user.ID, utils.FormatDay(utils.AddDays(today, -2)), models.ReminderPending, base)
	// Tomorrow's reminder must not be touched
	future := seedReminder(t, db, user.ID, utils.FormatDay(utils.AddDays(today, 1)), models.ReminderPending, base)

	summary, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("ProcessPending failed: %v", err)
	}

	if summary.Processed != 2 || summary.Sent != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 processed and sent", summary)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(summary.Results))
	}
	if summary.Results[0].ReminderID != early.ID || summary.Results[1].ReminderID != late.ID {
		t.Errorf("results out of order: got %d then %d, want %d then %d",
			summary.Results[0].ReminderID, summary.Results[1].ReminderID, early.ID, late.ID)
	}

	var sent models.ScheduledNotification
	db.First(&sent, early.ID)
	if sent.Status != models.ReminderSent || sent.SentAt == nil {
		t.Errorf("early reminder not marked sent: status=%s sent_at=%v", sent.Status, sent.SentAt)
	}

	var untouched models.ScheduledNotification
	db.First(&untouched, future.ID)
	if untouched.Status != models.ReminderPending {
		t.Errorf("future reminder status = %s, want pending", untouched.Status)
	}

	if pusher.callCount() != 2 {
		t.Errorf("expected 2 pushes, got %d", pusher.callCount())
	}
}

func TestProcessPendingFailureClassification(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, &fakePusher{})
	today := utils.Today()
	todayStr := utils.FormatDay(today)

	noToken := seedUser(t, db, "notoken@example.com", "", models.UserActive)
	inactive := seedUser(t, db, "inactive@example.com", "token-b", models.UserInactive)

	rNoUser := seedReminder(t, db, 9999, todayStr, models.ReminderPending, time.Now().UTC())
	rNoToken := seedReminder(t, db, noToken.ID, todayStr, models.ReminderPending, time.Now().UTC())
	rInactive := seedReminder(t, db, inactive.ID, todayStr, models.ReminderPending, time.Now().UTC())

	summary, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("ProcessPending failed: %v", err)
	}
	if summary.Failed != 3 || summary.Sent != 0 {
		t.Fatalf("summary = %+v, want 3 failed", summary)
	}

	wantReasons := map[uint]string{
		rNoUser.ID:   "User not found",
		rNoToken.ID:  "No FCM token",
		rInactive.ID: "User inactive",
	}
	for _, res := range summary.Results {
		if want := wantReasons[res.ReminderID]; res.Error != want {
			t.Errorf("reminder %d failure reason = %q, want %q", res.ReminderID, res.Error, want)
		}
	}

	var failed models.ScheduledNotification
	db.First(&failed, rInactive.ID)
	if failed.Status != models.ReminderFailed || failed.ErrorMessage != "User inactive" {
		t.Errorf("inactive reminder row = status %s error %q", failed.Status, failed.ErrorMessage)
	}
}

func TestProcessPendingIsIdempotentAcrossRuns(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, &fakePusher{})
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderPending, time.Now().UTC())

	first, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Sent != 1 {
		t.Fatalf("first run sent = %d, want 1", first.Sent)
	}

	second, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Processed != 0 {
		t.Errorf("second run processed = %d, want 0", second.Processed)
	}
}

func TestProcessPendingFailureIsTerminal(t *testing.T) {
	db := newTestDB(t)
	pusher := &fakePusher{err: errors.New("FCM send failed with status 404")}
	svc := NewDispatchService(db, pusher)
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	reminder := seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderPending, time.Now().UTC())

	if _, err := svc.ProcessPending(context.Background(), today, false); err != nil {
		t.Fatalf("ProcessPending failed: %v", err)
	}

	var row models.ScheduledNotification
	db.First(&row, reminder.ID)
	if row.Status != models.ReminderFailed {
		t.Fatalf("reminder status = %s, want failed", row.Status)
	}

	// Failed rows are never retried
	second, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Processed != 0 {
		t.Errorf("failed reminder was re-processed: %+v", second)
	}
}

func TestProcessPendingSkipsClaimedRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, &fakePusher{})
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	// A row already claimed by another invocation is invisible to the scan
	seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderSending, time.Now().UTC())

	summary, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("ProcessPending failed: %v", err)
	}
	if summary.Processed != 0 {
		t.Errorf("claimed reminder was processed: %+v", summary)
	}
}

func TestProcessPendingWithoutPusherClaimsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, nil)
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	reminder := seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderPending, time.Now().UTC())

	_, err := svc.ProcessPending(context.Background(), today, false)
	if !errors.Is(err, ErrPushUnavailable) {
		t.Fatalf("ProcessPending error = %v, want ErrPushUnavailable", err)
	}

	// Nothing may be claimed when no gateway is available
	var row models.ScheduledNotification
	db.First(&row, reminder.ID)
	if row.Status != models.ReminderPending {
		t.Errorf("reminder status = %s, want pending", row.Status)
	}

	// Dry runs never push, so they work without a gateway
	summary, err := svc.ProcessPending(context.Background(), today, true)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if summary.Processed != 1 {
		t.Errorf("dry run processed = %d, want 1", summary.Processed)
	}
}

func TestProcessPendingReclaimsStaleClaims(t *testing.T) {
	db := newTestDB(t)
	pusher := &fakePusher{}
	svc := NewDispatchService(db, pusher)
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	stale := seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderSending, time.Now().UTC())
	// Age the claim past the abandonment threshold, bypassing the
	// auto-maintained timestamp
	if err := db.Model(stale).
		UpdateColumn("updated_at", time.Now().UTC().Add(-claimStaleAfter-time.Minute)).Error; err != nil {
		t.Fatalf("failed to age claim: %v", err)
	}

	summary, err := svc.ProcessPending(context.Background(), today, false)
	if err != nil {
		t.Fatalf("ProcessPending failed: %v", err)
	}
	if summary.Processed != 1 || summary.Sent != 1 {
		t.Fatalf("summary = %+v, want the stale claim reclaimed and sent", summary)
	}

	var row models.ScheduledNotification
	db.First(&row, stale.ID)
	if row.Status != models.ReminderSent {
		t.Errorf("reclaimed reminder status = %s, want sent", row.Status)
	}
	if pusher.callCount() != 1 {
		t.Errorf("expected 1 push, got %d", pusher.callCount())
	}
}

func TestProcessPendingReleasesClaimOnUserLoadError(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, &fakePusher{})
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	reminder := seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderPending, time.Now().UTC())

	// Make the user lookup fail with something other than not-found
	if err := db.Exec("DROP TABLE app_user").Error; err != nil {
		t.Fatalf("failed to drop user table: %v", err)
	}

	if _, err := svc.ProcessPending(context.Background(), today, false); err == nil {
		t.Fatal("ProcessPending succeeded despite broken user lookup")
	}

	// A lookup failure must not consume the reminder
	var row models.ScheduledNotification
	db.First(&row, reminder.ID)
	if row.Status != models.ReminderPending {
		t.Errorf("reminder status = %s, want pending after released claim", row.Status)
	}
}

func TestProcessPendingDryRunWritesNothing(t *testing.T) {
	db := newTestDB(t)
	pusher := &fakePusher{}
	svc := NewDispatchService(db, pusher)
	today := utils.Today()

	user := seedUser(t, db, "a@example.com", "token-a", models.UserActive)
	noToken := seedUser(t, db, "notoken@example.com", "", models.UserActive)
	rSend := seedReminder(t, db, user.ID, utils.FormatDay(today), models.ReminderPending, time.Now().UTC())
	rFail := seedReminder(t, db, noToken.ID, utils.FormatDay(today), models.ReminderPending, time.Now().UTC().Add(time.Second))

	summary, err := svc.ProcessPending(context.Background(), today, true)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	if !summary.DryRun || summary.Processed != 2 || summary.Skipped != 2 {
		t.Fatalf("summary = %+v, want 2 processed all skipped", summary)
	}

	outcomes := map[uint]string{}
	for _, res := range summary.Results {
		outcomes[res.ReminderID] = res.Status
	}
	if outcomes[rSend.ID] != "would_send" {
		t.Errorf("deliverable reminder outcome = %q, want would_send", outcomes[rSend.ID])
	}
	if outcomes[rFail.ID] != "would_fail" {
		t.Errorf("token-less reminder outcome = %q, want would_fail", outcomes[rFail.ID])
	}

	if pusher.callCount() != 0 {
		t.Errorf("dry run pushed %d notifications", pusher.callCount())
	}

	var pending int64
	db.Model(&models.ScheduledNotification{}).
		Where("status = ?", models.ReminderPending).Count(&pending)
	if pending != 2 {
		t.Errorf("dry run changed reminder status, %d still pending", pending)
	}

	var logs int64
	db.Model(&models.NotificationLog{}).Count(&logs)
	if logs != 0 {
		t.Errorf("dry run wrote %d notification logs", logs)
	}
}
