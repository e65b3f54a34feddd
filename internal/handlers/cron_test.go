package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clubcare/internal/auth"
	"clubcare/internal/models"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
)

func cronRouter() *gin.Engine {
	router := gin.New()
	cron := router.Group("/api/cron")
	cron.Use(auth.CronAuthMiddleware())
	cron.POST("/dispatch-reminders", DispatchReminders)
	cron.POST("/cleanup", CleanupOldData)
	return router
}

func cronRequest(router *gin.Engine, path, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if secret != "" {
		req.Header.Set("x-cron-secret", secret)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDispatchRemindersEndpoint(t *testing.T) {
	db := setupTest(t)
	t.Setenv("CRON_SECRET", "s3cret")
	router := cronRouter()

	user := models.User{Email: "member@example.com", FCMToken: "token-1"}
	db.Create(&user)
	db.Create(&models.ScheduledNotification{
		UserID: user.ID, CheckInID: 1, MedicationName: "vitamin-d",
		ScheduledDate: utils.FormatDay(utils.Today()),
		ScheduledType: models.ReminderOnDate,
		Title:         "Medication due today", Body: "Your vitamin-d dose is due today.",
		Status: models.ReminderPending,
	})

	w := cronRequest(router, "/api/cron/dispatch-reminders", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("dispatch status = %d: %s", w.Code, w.Body.String())
	}

	var summary struct {
		Processed int `json:"processed"`
		Sent      int `json:"sent"`
	}
	json.Unmarshal(w.Body.Bytes(), &summary)
	if summary.Processed != 1 || summary.Sent != 1 {
		t.Errorf("summary = %+v, want 1 processed and sent", summary)
	}
}

func TestDispatchRemindersDryRunQuery(t *testing.T) {
	db := setupTest(t)
	t.Setenv("CRON_SECRET", "s3cret")
	router := cronRouter()

	user := models.User{Email: "member@example.com", FCMToken: "token-1"}
	db.Create(&user)
	db.Create(&models.ScheduledNotification{
		UserID: user.ID, CheckInID: 1, MedicationName: "vitamin-d",
		ScheduledDate: utils.FormatDay(utils.Today()),
		ScheduledType: models.ReminderOnDate,
		Status:        models.ReminderPending,
	})

	w := cronRequest(router, "/api/cron/dispatch-reminders?dryRun=true", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("dry run status = %d: %s", w.Code, w.Body.String())
	}

	var remaining int64
	db.Model(&models.ScheduledNotification{}).
		Where("status = ?", models.ReminderPending).Count(&remaining)
	if remaining != 1 {
		t.Errorf("dry run consumed the reminder, %d still pending", remaining)
	}
}

func TestCronEndpointsRejectBadSecret(t *testing.T) {
	setupTest(t)
	t.Setenv("CRON_SECRET", "s3cret")
	router := cronRouter()

	if w := cronRequest(router, "/api/cron/dispatch-reminders", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret status = %d, want 401", w.Code)
	}
	if w := cronRequest(router, "/api/cron/cleanup", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing secret status = %d, want 401", w.Code)
	}
}

func TestCronAcceptsBearerToken(t *testing.T) {
	setupTest(t)
	t.Setenv("CRON_SECRET", "s3cret")
	router := cronRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/cron/cleanup", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("bearer token status = %d, want 200", w.Code)
	}
}
