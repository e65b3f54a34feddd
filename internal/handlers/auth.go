package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"clubcare/internal/auth"
	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Login authenticates an admin and establishes a session cookie. Every
// attempt, successful or not, is recorded in the login log.
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	db := database.GetDB()
	var account models.AdminAccount
	if err := db.Where("username = ?", req.Username).First(&account).Error; err != nil {
		recordLoginAttempt(db, c, req.Username, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusUnauthorized, "Invalid credentials", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Login attempt failed", err)
		return
	}

	if !auth.VerifyPassword(account.HashedPass, req.Password) {
		recordLoginAttempt(db, c, req.Username, false)
		handleError(c, http.StatusUnauthorized, "Invalid credentials",
			fmt.Errorf("password verification failed for admin %s", req.Username))
		return
	}

	if err := auth.CreateSession(c, account.Username); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	recordLoginAttempt(db, c, req.Username, true)
	db.Model(&account).Update("last_login", time.Now())

	c.JSON(http.StatusOK, gin.H{"username": account.Username})
}

// Logout invalidates the current admin session
func Logout(c *gin.Context) {
	auth.DeleteSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCurrentUser returns the admin bound to the session
func GetCurrentUser(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		handleError(c, http.StatusUnauthorized, "Not authenticated", fmt.Errorf("session without username"))
		return
	}

	db := database.GetDB()
	var account models.AdminAccount
	if err := db.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Account not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve account", err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// recordLoginAttempt writes the audit row; failures are logged only
func recordLoginAttempt(db *gorm.DB, c *gin.Context, username string, success bool) {
	entry := models.LoginLog{
		Username:  username,
		IPAddress: utils.ClientIP(c),
		Success:   success,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to record login attempt for %s: %v", username, err)
	}
}
