package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxImageSize = 5 << 20 // 5 MiB

// CreateMedicine adds a catalog entry
func CreateMedicine(c *gin.Context) {
	var req models.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	medicine := models.Medicine{
		Name:         req.Name,
		Slug:         strings.ToLower(strings.TrimSpace(req.Slug)),
		Description:  req.Description,
		Price:        req.Price,
		WooProductID: req.WooProductID,
		Attributes:   req.Attributes,
		Published:    published,
	}

	db := database.GetDB()
	if err := db.Create(&medicine).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			handleError(c, http.StatusConflict, "Slug already exists", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create medicine", err)
		return
	}

	c.JSON(http.StatusCreated, medicine)
}

// GetMedicine retrieves a catalog entry by slug
func GetMedicine(c *gin.Context) {
	slug := c.Param("slug")

	db := database.GetDB()
	var medicine models.Medicine
	if err := db.Where("slug = ?", slug).First(&medicine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Medicine not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicine", err)
		return
	}

	c.JSON(http.StatusOK, medicine)
}

// ListMedicines returns the catalog; unpublished entries only for admins
func ListMedicines(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.Medicine{})
	if c.GetString("username") == "" {
		// public callers only see published entries
		query = query.Where("published = ?", true)
	}

	var medicines []models.Medicine
	if err := query.Order("name asc").Find(&medicines).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list medicines", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"medicines": medicines})
}

// SearchMedicines handles the app's catalog search box
func SearchMedicines(c *gin.Context) {
	term := c.Query("q")
	if strings.TrimSpace(term) == "" {
		handleError(c, http.StatusBadRequest, "q parameter is required", fmt.Errorf("empty search term"))
		return
	}

	limit := 20
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= 50 {
		limit = parsed
	}
	offset := 0
	if parsed, err := strconv.Atoi(c.Query("offset")); err == nil && parsed > 0 {
		offset = parsed
	}

	svc := services.NewSearchService(database.GetDB())
	results, err := svc.SearchCatalog(term, limit, offset)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Search failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"medicines": results})
}

// UpdateMedicine applies partial updates to a catalog entry
func UpdateMedicine(c *gin.Context) {
	slug := c.Param("slug")

	var req models.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var medicine models.Medicine
	if err := db.Where("slug = ?", slug).First(&medicine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Medicine not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicine", err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.WooProductID != nil {
		updates["woo_product_id"] = *req.WooProductID
	}
	if req.Attributes != nil {
		updates["attributes"] = *req.Attributes
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if len(updates) == 0 {
		handleError(c, http.StatusBadRequest, "No fields to update", fmt.Errorf("empty update for medicine %s", slug))
		return
	}

	if err := db.Model(&medicine).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update medicine", err)
		return
	}

	c.JSON(http.StatusOK, medicine)
}

// DeleteMedicine soft-deletes a catalog entry
func DeleteMedicine(c *gin.Context) {
	slug := c.Param("slug")

	db := database.GetDB()
	res := db.Where("slug = ?", slug).Delete(&models.Medicine{})
	if res.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete medicine", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		handleError(c, http.StatusNotFound, "Medicine not found", fmt.Errorf("delete of missing medicine %s", slug))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadMedicineImage stores a product image in Cloudinary and records the
// returned URL on the catalog entry
func UploadMedicineImage(c *gin.Context) {
	if imageService == nil {
		handleError(c, http.StatusServiceUnavailable, "Image uploads not configured", fmt.Errorf("image service missing"))
		return
	}

	slug := c.Param("slug")
	db := database.GetDB()
	var medicine models.Medicine
	if err := db.Where("slug = ?", slug).First(&medicine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Medicine not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve medicine", err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		handleError(c, http.StatusBadRequest, "image file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}
	defer file.Close()

	if err := imageService.ValidateImageFile(file, maxImageSize); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	url, err := imageService.UploadCatalogImage(file, fileHeader.Filename, medicine.Slug)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload image", err)
		return
	}

	if err := db.Model(&medicine).Update("image_url", url).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to store image URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
