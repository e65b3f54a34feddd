package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ValidateBranchPlace validates a Google Place ID and returns standardized
// location data, used by the admin panel before saving a branch
func ValidateBranchPlace(c *gin.Context) {
	placeID := c.Query("place_id")
	if placeID == "" {
		handleError(c, http.StatusBadRequest, "place_id parameter is required", fmt.Errorf("missing place_id"))
		return
	}

	location, err := services.ValidateBranchLocation(placeID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to validate location", err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// CreateBranch adds a club branch, validating its place ID with the Maps API
func CreateBranch(c *gin.Context) {
	var req models.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	location, err := services.ValidateBranchLocation(req.PlaceID)
	if err != nil {
		log.Printf("Error: place validation failed for %s: %v", req.PlaceID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place_id"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	branch := models.Branch{
		Name:      req.Name,
		Phone:     req.Phone,
		Location:  *location,
		OpenHours: req.OpenHours,
		Active:    active,
	}

	db := database.GetDB()
	if err := db.Create(&branch).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create branch", err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

// ListBranches returns branches for the app's locator; inactive ones only
// for admins
func ListBranches(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.Branch{})
	if c.GetString("username") == "" {
		query = query.Where("active = ?", true)
	}

	var branches []models.Branch
	if err := query.Order("name asc").Find(&branches).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list branches", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// UpdateBranch replaces the mutable fields of a branch
func UpdateBranch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid branch ID", err)
		return
	}

	var req models.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var branch models.Branch
	if err := db.First(&branch, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Branch not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve branch", err)
		return
	}

	updates := map[string]interface{}{
		"name":       req.Name,
		"phone":      req.Phone,
		"open_hours": req.OpenHours,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	// Only re-validate when the place actually changed
	if req.PlaceID != branch.Location.PlaceID {
		location, err := services.ValidateBranchLocation(req.PlaceID)
		if err != nil {
			log.Printf("Error: place validation failed for %s: %v", req.PlaceID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place_id"})
			return
		}
		updates["location"] = *location
	}

	if err := db.Model(&branch).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update branch", err)
		return
	}

	c.JSON(http.StatusOK, branch)
}

// DeleteBranch soft-deletes a branch
func DeleteBranch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid branch ID", err)
		return
	}

	db := database.GetDB()
	res := db.Delete(&models.Branch{}, uint(id))
	if res.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete branch", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		handleError(c, http.StatusNotFound, "Branch not found", fmt.Errorf("delete of missing branch %d", id))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
