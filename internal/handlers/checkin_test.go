package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/services"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest swaps the package database for an in-memory one and wires a
// no-op pusher; the previous state is restored when the test ends
func setupTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prevDB, prevPusher := database.DB, pusher
	database.DB = db
	pusher = services.PusherFunc(func(ctx context.Context, token, title, body string, data map[string]string) error {
		return nil
	})
	t.Cleanup(func() {
		database.DB = prevDB
		pusher = prevPusher
	})
	return db
}

func checkinRouter() *gin.Engine {
	router := gin.New()
	router.POST("/api/checkins", CreateCheckIn)
	router.GET("/api/checkins/status", GetCheckInStatus)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCheckInDuplicateIsIdempotent(t *testing.T) {
	db := setupTest(t)
	router := checkinRouter()

	user := models.User{Email: "member@example.com", FCMToken: "token-1"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	body := models.CheckInRequest{UserID: user.ID, MedicationName: "vitamin-d"}

	first := postJSON(t, router, "/api/checkins", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first check-in status = %d: %s", first.Code, first.Body.String())
	}
	var firstResp struct {
		AlreadyCheckedIn bool `json:"alreadyCheckedIn"`
	}
	json.Unmarshal(first.Body.Bytes(), &firstResp)
	if firstResp.AlreadyCheckedIn {
		t.Error("first check-in reported alreadyCheckedIn")
	}

	second := postJSON(t, router, "/api/checkins", body)
	if second.Code != http.StatusOK {
		t.Fatalf("duplicate check-in status = %d: %s", second.Code, second.Body.String())
	}
	var secondResp struct {
		AlreadyCheckedIn bool           `json:"alreadyCheckedIn"`
		CheckIn          models.CheckIn `json:"checkIn"`
	}
	json.Unmarshal(second.Body.Bytes(), &secondResp)
	if !secondResp.AlreadyCheckedIn {
		t.Error("duplicate check-in not reported as alreadyCheckedIn")
	}

	var n int64
	db.Model(&models.CheckIn{}).Count(&n)
	if n != 1 {
		t.Errorf("expected 1 check-in row, got %d", n)
	}
}

func TestCreateCheckInDifferentMedicationSameDay(t *testing.T) {
	db := setupTest(t)
	router := checkinRouter()

	user := models.User{Email: "member@example.com"}
	db.Create(&user)

	postJSON(t, router, "/api/checkins", models.CheckInRequest{UserID: user.ID, MedicationName: "vitamin-d"})
	w := postJSON(t, router, "/api/checkins", models.CheckInRequest{UserID: user.ID, MedicationName: "omega-3"})
	if w.Code != http.StatusOK {
		t.Fatalf("second medication check-in status = %d", w.Code)
	}

	var n int64
	db.Model(&models.CheckIn{}).Count(&n)
	if n != 2 {
		t.Errorf("expected 2 check-in rows, got %d", n)
	}
}

func TestCreateCheckInSchedulesReminders(t *testing.T) {
	db := setupTest(t)
	router := checkinRouter()

	user := models.User{Email: "member@example.com", FCMToken: "token-1"}
	db.Create(&user)

	nextDue := utils.FormatDay(utils.AddDays(utils.Today(), 7))
	w := postJSON(t, router, "/api/checkins", models.CheckInRequest{
		UserID:      user.ID,
		NextDueDate: nextDue,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("check-in status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ReminderDates []string `json:"reminderDates"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.ReminderDates) != 3 {
		t.Errorf("reminderDates = %v, want 3 entries", resp.ReminderDates)
	}

	var reminders int64
	db.Model(&models.ScheduledNotification{}).Count(&reminders)
	if reminders != 3 {
		t.Errorf("expected 3 reminder rows, got %d", reminders)
	}
}

func TestCreateCheckInSucceedsWithoutPushGateway(t *testing.T) {
	db := setupTest(t)
	pusher = nil
	router := checkinRouter()

	user := models.User{Email: "member@example.com", FCMToken: "token-1"}
	db.Create(&user)

	nextDue := utils.FormatDay(utils.AddDays(utils.Today(), 7))
	w := postJSON(t, router, "/api/checkins", models.CheckInRequest{
		UserID:      user.ID,
		NextDueDate: nextDue,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("check-in without push gateway status = %d: %s", w.Code, w.Body.String())
	}

	var reminders int64
	db.Model(&models.ScheduledNotification{}).Count(&reminders)
	if reminders != 3 {
		t.Errorf("expected 3 reminder rows, got %d", reminders)
	}

	var immediate models.ScheduledNotification
	if err := db.Where("scheduled_type = ?", models.ReminderImmediate).First(&immediate).Error; err != nil {
		t.Fatalf("immediate reminder not stored: %v", err)
	}
	if immediate.ErrorMessage == "" {
		t.Error("expected the unavailable gateway recorded in error_message")
	}
}

func TestCreateCheckInRequiresIdentifier(t *testing.T) {
	setupTest(t)
	router := checkinRouter()

	w := postJSON(t, router, "/api/checkins", models.CheckInRequest{MedicationName: "vitamin-d"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("identifier-less check-in status = %d, want 400", w.Code)
	}
}

func TestCreateCheckInUnknownUser(t *testing.T) {
	setupTest(t)
	router := checkinRouter()

	w := postJSON(t, router, "/api/checkins", models.CheckInRequest{UserID: 12345})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}
}

func TestGetCheckInStatusWithHistoryAndStreak(t *testing.T) {
	db := setupTest(t)
	router := checkinRouter()

	user := models.User{Email: "member@example.com"}
	db.Create(&user)

	today := utils.Today()
	// Three consecutive days ending yesterday, then a gap
	for _, offset := range []int{-1, -2, -3, -5} {
		db.Create(&models.CheckIn{
			UserID:         user.ID,
			Date:           utils.FormatDay(utils.AddDays(today, offset)),
			MedicationName: models.DefaultMedicationName,
		})
	}

	url := fmt.Sprintf("/api/checkins/status?userId=%d&history=true&days=7", user.ID)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		CheckedIn bool             `json:"checkedIn"`
		History   []models.CheckIn `json:"history"`
		Streak    int              `json:"streak"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.CheckedIn {
		t.Error("checkedIn = true, but there is no check-in today")
	}
	if len(resp.History) != 4 {
		t.Errorf("history length = %d, want 4", len(resp.History))
	}
	// Missing today does not break the streak; the day -4 gap does
	if resp.Streak != 3 {
		t.Errorf("streak = %d, want 3", resp.Streak)
	}
}

func TestComputeStreakCountsToday(t *testing.T) {
	db := setupTest(t)

	user := models.User{Email: "member@example.com"}
	db.Create(&user)

	today := utils.Today()
	for _, offset := range []int{0, -1} {
		db.Create(&models.CheckIn{
			UserID:         user.ID,
			Date:           utils.FormatDay(utils.AddDays(today, offset)),
			MedicationName: models.DefaultMedicationName,
		})
	}

	if got := computeStreak(db, user.ID, today); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}
