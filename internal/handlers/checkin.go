package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/services"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxStreakScan = 365

// resolveUser finds the app user a request refers to: by internal ID, by
// WordPress user ID, or by case-insensitive trimmed email.
func resolveUser(db *gorm.DB, userID, wpUserID uint, email string) (*models.User, error) {
	var user models.User
	var err error

	switch {
	case userID != 0:
		err = db.First(&user, userID).Error
	case wpUserID != 0:
		err = db.Where("wp_user_id = ?", wpUserID).First(&user).Error
	case email != "":
		normalized := strings.ToLower(strings.TrimSpace(email))
		err = db.Where("LOWER(email) = ?", normalized).First(&user).Error
	default:
		return nil, fmt.Errorf("no user identifier supplied")
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateCheckIn records that a user took a medication today (or on the day
// given in the date query parameter). Duplicate check-ins are idempotent:
// the existing row comes back with alreadyCheckedIn set. A nextDueDate on a
// fresh check-in schedules reminders as a best-effort side effect.
func CreateCheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), err)
		return
	}

	if req.UserID == 0 && req.WpUserID == 0 && strings.TrimSpace(req.Email) == "" {
		handleError(c, http.StatusBadRequest, "userId, wpUserId or email is required",
			fmt.Errorf("check-in without user identifier"))
		return
	}

	// Calendar day, defaulting to today; override supported for backfill
	day := utils.Today()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := utils.ParseDay(dateStr)
		if err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		day = parsed
	}

	createdAt := time.Now().UTC()
	if timeStr := c.Query("time"); timeStr != "" {
		hour, min, sec, err := utils.ParseClock(timeStr)
		if err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		createdAt = day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second)
	}

	var nextDue time.Time
	if req.NextDueDate != "" {
		parsed, err := utils.ParseDay(req.NextDueDate)
		if err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		nextDue = parsed
	}

	db := database.GetDB()
	user, err := resolveUser(db, req.UserID, req.WpUserID, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "User not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to resolve user", err)
		return
	}

	medication := strings.TrimSpace(req.MedicationName)
	if medication == "" {
		medication = models.DefaultMedicationName
	}

	checkIn := models.CheckIn{
		UserID:         user.ID,
		Date:           utils.FormatDay(day),
		MedicationName: medication,
		NextDueDate:    req.NextDueDate,
		DeviceInfo:     req.DeviceInfo,
		IPAddress:      utils.ClientIP(c),
		CreatedAt:      createdAt,
	}

	if err := db.Create(&checkIn).Error; err != nil {
		// The unique (user, date, medication) constraint is the idempotency
		// mechanism: a duplicate returns the existing row, not an error
		if isDuplicateKeyError(err) {
			var existing models.CheckIn
			if ferr := db.Where("user_id = ? AND date = ? AND medication_name = ?",
				user.ID, checkIn.Date, medication).First(&existing).Error; ferr != nil {
				handleError(c, http.StatusInternalServerError, "Failed to load existing check-in", ferr)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"success":          true,
				"alreadyCheckedIn": true,
				"checkIn":          existing,
			})
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to record check-in", err)
		return
	}

	response := gin.H{
		"success":          true,
		"alreadyCheckedIn": false,
		"checkIn":          checkIn,
	}

	// Reminder scheduling must never fail an already-recorded check-in
	if !nextDue.IsZero() {
		reminderSvc := services.NewReminderService(db, pusher)
		dates, err := reminderSvc.ScheduleReminders(c.Request.Context(), user.ID, checkIn.ID, medication, nextDue, user.FCMToken)
		if err != nil {
			log.Printf("Warning: reminder scheduling failed for check-in %d: %v", checkIn.ID, err)
		}
		if len(dates) > 0 {
			response["reminderDates"] = dates
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetCheckInStatus reports whether a user checked in on a day (default
// today), optionally with a trailing history window and the current streak
func GetCheckInStatus(c *gin.Context) {
	userID := parseUintQuery(c, "userId")
	wpUserID := parseUintQuery(c, "wpUserId")
	email := c.Query("email")

	if userID == 0 && wpUserID == 0 && email == "" {
		handleError(c, http.StatusBadRequest, "userId, wpUserId or email is required",
			fmt.Errorf("status query without user identifier"))
		return
	}

	day := utils.Today()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := utils.ParseDay(dateStr)
		if err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		day = parsed
	}

	db := database.GetDB()
	user, err := resolveUser(db, userID, wpUserID, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "User not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to resolve user", err)
		return
	}

	dayStr := utils.FormatDay(day)
	var checkIns []models.CheckIn
	if err := db.Where("user_id = ? AND date = ?", user.ID, dayStr).
		Order("created_at asc").Find(&checkIns).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to load check-ins", err)
		return
	}

	response := gin.H{
		"checkedIn": len(checkIns) > 0,
		"checkIns":  checkIns,
	}

	if c.Query("history") == "true" {
		days := 7
		if d, err := strconv.Atoi(c.Query("days")); err == nil && d > 0 && d <= 90 {
			days = d
		}

		from := utils.FormatDay(utils.AddDays(day, -(days - 1)))
		var history []models.CheckIn
		if err := db.Where("user_id = ? AND date >= ? AND date <= ?", user.ID, from, dayStr).
			Order("date desc, created_at asc").Find(&history).Error; err != nil {
			handleError(c, http.StatusInternalServerError, "Failed to load history", err)
			return
		}

		response["history"] = history
		response["streak"] = computeStreak(db, user.ID, day)
	}

	c.JSON(http.StatusOK, response)
}

// computeStreak counts consecutive days with at least one check-in, walking
// backward from the query day. A missing day 0 does not end the streak (the
// user may simply not have checked in yet today); any later gap does.
func computeStreak(db *gorm.DB, userID uint, day time.Time) int {
	streak := 0
	for i := 0; i < maxStreakScan; i++ {
		dayStr := utils.FormatDay(utils.AddDays(day, -i))
		var n int64
		if err := db.Model(&models.CheckIn{}).
			Where("user_id = ? AND date = ?", userID, dayStr).
			Count(&n).Error; err != nil {
			log.Printf("Warning: streak scan failed at %s: %v", dayStr, err)
			break
		}
		if n > 0 {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak
}

// isDuplicateKeyError recognizes unique-constraint violations across the
// Postgres driver and the in-memory test database
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func parseUintQuery(c *gin.Context, key string) uint {
	val, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(val)
}
