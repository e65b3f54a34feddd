package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"clubcare/internal/database"
	"clubcare/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// broadcasting guards against overlapping broadcast runs; a second request
// while one is in flight gets 409
var broadcasting atomic.Bool

// SendPushRequest is the admin manual-push body. Either UserID targets one
// user or Broadcast targets every active user with a token.
type SendPushRequest struct {
	UserID    uint   `json:"user_id"`
	Broadcast bool   `json:"broadcast"`
	Title     string `json:"title" binding:"required,max=255"`
	Body      string `json:"body" binding:"required"`
}

// SendPushNotification lets an admin push a message to one user or to all
// active users. Every attempt lands in the notification log.
func SendPushNotification(c *gin.Context) {
	if pusher == nil {
		handleError(c, http.StatusServiceUnavailable, "Push gateway not configured", fmt.Errorf("pusher missing"))
		return
	}

	var req SendPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if !req.Broadcast && req.UserID == 0 {
		handleError(c, http.StatusBadRequest, "user_id or broadcast is required", fmt.Errorf("push without target"))
		return
	}

	db := database.GetDB()

	if !req.Broadcast {
		var user models.User
		if err := db.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				handleError(c, http.StatusNotFound, "User not found", err)
				return
			}
			handleError(c, http.StatusInternalServerError, "Failed to resolve user", err)
			return
		}
		if user.FCMToken == "" {
			handleError(c, http.StatusBadRequest, "User has no device token", fmt.Errorf("push to user %d without token", user.ID))
			return
		}

		pushErr := pusher.Push(c.Request.Context(), user.FCMToken, req.Title, req.Body, nil)
		recordPushAttempt(db, user.ID, req.Title, req.Body, pushErr)
		if pushErr != nil {
			handleError(c, http.StatusBadGateway, "Push delivery failed", pushErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "sent": 1})
		return
	}

	if !broadcasting.CompareAndSwap(false, true) {
		handleError(c, http.StatusConflict, "A broadcast is already in progress", fmt.Errorf("concurrent broadcast rejected"))
		return
	}
	defer broadcasting.Store(false)

	var users []models.User
	if err := db.Where("status = ? AND fcm_token <> ''", models.UserActive).Find(&users).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to load recipients", err)
		return
	}

	sent, failed := 0, 0
	for _, user := range users {
		pushErr := pusher.Push(c.Request.Context(), user.FCMToken, req.Title, req.Body, nil)
		recordPushAttempt(db, user.ID, req.Title, req.Body, pushErr)
		if pushErr != nil {
			log.Printf("Warning: broadcast push to user %d failed: %v", user.ID, pushErr)
			failed++
			continue
		}
		sent++
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sent": sent, "failed": failed, "recipients": len(users)})
}

// ListNotificationLogs returns recent push attempts for the admin panel
func ListNotificationLogs(c *gin.Context) {
	db := database.GetDB()

	limit := 100
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= 500 {
		limit = parsed
	}

	query := db.Model(&models.NotificationLog{})
	if userID := parseUintQuery(c, "userId"); userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var logs []models.NotificationLog
	if err := query.Order("created_at desc").Limit(limit).Find(&logs).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list notification logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// recordPushAttempt writes the notification log row; failures logged only
func recordPushAttempt(db *gorm.DB, userID uint, title, body string, pushErr error) {
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
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to record notification log for user %d: %v", userID, err)
	}
}
