package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// SessionCookieName is the name of the cookie that stores the session ID
	SessionCookieName = "clubcare_session"
	// SessionIDLength is the length of the random session ID in bytes
	SessionIDLength = 32
)

// GenerateRandomString creates a cryptographically secure random string
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// CreateSession creates a new admin session and sets the session cookie
func CreateSession(c *gin.Context, username string) error {
	sessionID, err := GenerateRandomString(SessionIDLength)
	if err != nil {
		return fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := models.Session{
		ID:        sessionID,
		Username:  username,
		IPAddress: utils.ClientIP(c),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(models.SessionDuration),
	}

	db := database.GetDB()
	if err := db.Create(&session).Error; err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(
		SessionCookieName,
		sessionID,
		int(time.Until(session.ExpiresAt).Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly
	)

	return nil
}

// GetSession retrieves the current session from the request
func GetSession(c *gin.Context) (*models.Session, error) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("session cookie not found: %w", err)
	}

	db := database.GetDB()
	var session models.Session
	if err := db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	if session.IsExpired() {
		DeleteSession(c)
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// DeleteSession removes the session and clears the cookie
func DeleteSession(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err == nil {
		db := database.GetDB()
		db.Where("id = ?", sessionID).Delete(&models.Session{})
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
