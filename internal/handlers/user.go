package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"clubcare/internal/database"
	"clubcare/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateUser handles admin creation of a new app user
func CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	user := models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Name:           req.Name,
		WpUserID:       req.WpUserID,
		MembershipTier: req.MembershipTier,
		Status:         models.UserActive,
	}

	db := database.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			handleError(c, http.StatusConflict, "Email already in use", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	// Welcome mail is best-effort
	if emailService != nil {
		if err := emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser retrieves a single app user by ID
func GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "User not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns users with paging and optional status filtering
func ListUsers(c *gin.Context) {
	db := database.GetDB()

	limit := 50
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= 200 {
		limit = parsed
	}
	offset := 0
	if parsed, err := strconv.Atoi(c.Query("offset")); err == nil && parsed > 0 {
		offset = parsed
	}

	query := db.Model(&models.User{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to count users", err)
		return
	}

	var users []models.User
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// UpdateUser applies partial updates to an app user
func UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "User not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.MembershipTier != nil {
		updates["membership_tier"] = *req.MembershipTier
	}
	if len(updates) == 0 {
		handleError(c, http.StatusBadRequest, "No fields to update", fmt.Errorf("empty update for user %d", id))
		return
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes an app user
func DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	db := database.GetDB()
	res := db.Delete(&models.User{}, uint(id))
	if res.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete user", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		handleError(c, http.StatusNotFound, "User not found", fmt.Errorf("delete of missing user %d", id))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterDeviceToken attaches or refreshes the FCM token the mobile app
// obtained for this user's device
func RegisterDeviceToken(c *gin.Context) {
	var req models.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if req.UserID == 0 && req.WpUserID == 0 && req.Email == "" {
		handleError(c, http.StatusBadRequest, "userId, wpUserId or email is required",
			fmt.Errorf("token registration without user identifier"))
		return
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

	if err := db.Model(user).Update("fcm_token", req.FCMToken).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to store token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
