package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"clubcare/internal/database"
	"clubcare/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateBlog adds a blog post
func CreateBlog(c *gin.Context) {
	var req models.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	blog := models.Blog{
		Title:     req.Title,
		Slug:      strings.ToLower(strings.TrimSpace(req.Slug)),
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		Published: req.Published,
	}

	db := database.GetDB()
	if err := db.Create(&blog).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			handleError(c, http.StatusConflict, "Slug already exists", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create blog", err)
		return
	}

	c.JSON(http.StatusCreated, blog)
}

// GetBlog retrieves a blog post by slug
func GetBlog(c *gin.Context) {
	slug := c.Param("slug")

	db := database.GetDB()
	var blog models.Blog
	if err := db.Where("slug = ?", slug).First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Blog not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve blog", err)
		return
	}

	if !blog.Published && c.GetString("username") == "" {
		handleError(c, http.StatusNotFound, "Blog not found", fmt.Errorf("unpublished blog %s requested publicly", slug))
		return
	}

	c.JSON(http.StatusOK, blog)
}

// ListBlogs returns blog posts, drafts included only for admins
func ListBlogs(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.Blog{})
	if c.GetString("username") == "" {
		query = query.Where("published = ?", true)
	}

	var blogs []models.Blog
	if err := query.Order("created_at desc").Find(&blogs).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list blogs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blogs": blogs})
}

// UpdateBlog replaces the mutable fields of a blog post
func UpdateBlog(c *gin.Context) {
	slug := c.Param("slug")

	var req models.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var blog models.Blog
	if err := db.Where("slug = ?", slug).First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Blog not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve blog", err)
		return
	}

	updates := map[string]interface{}{
		"title":     req.Title,
		"excerpt":   req.Excerpt,
		"body":      req.Body,
		"published": req.Published,
	}
	if err := db.Model(&blog).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update blog", err)
		return
	}

	c.JSON(http.StatusOK, blog)
}

// DeleteBlog soft-deletes a blog post
func DeleteBlog(c *gin.Context) {
	slug := c.Param("slug")

	db := database.GetDB()
	res := db.Where("slug = ?", slug).Delete(&models.Blog{})
	if res.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete blog", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		handleError(c, http.StatusNotFound, "Blog not found", fmt.Errorf("delete of missing blog %s", slug))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadBlogCover stores a cover image in Cloudinary and records its URL
func UploadBlogCover(c *gin.Context) {
	if imageService == nil {
		handleError(c, http.StatusServiceUnavailable, "Image uploads not configured", fmt.Errorf("image service missing"))
		return
	}

	slug := c.Param("slug")
	db := database.GetDB()
	var blog models.Blog
	if err := db.Where("slug = ?", slug).First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Blog not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve blog", err)
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

	url, err := imageService.UploadCoverImage(file, fileHeader.Filename, blog.Slug)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload image", err)
		return
	}

	if err := db.Model(&blog).Update("cover_url", url).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to store cover URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cover_url": url})
}

// CreateFAQ adds an FAQ entry
func CreateFAQ(c *gin.Context) {
	var req models.CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	faq := models.FAQ{
		Question:  req.Question,
		Answer:    req.Answer,
		Position:  req.Position,
		Published: published,
	}

	db := database.GetDB()
	if err := db.Create(&faq).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create FAQ", err)
		return
	}

	c.JSON(http.StatusCreated, faq)
}

// ListFAQs returns FAQ entries in display order
func ListFAQs(c *gin.Context) {
	db := database.GetDB()

	query := db.Model(&models.FAQ{})
	if c.GetString("username") == "" {
		query = query.Where("published = ?", true)
	}

	var faqs []models.FAQ
	if err := query.Order("position asc, id asc").Find(&faqs).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list FAQs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

// UpdateFAQ replaces an FAQ entry
func UpdateFAQ(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid FAQ ID", err)
		return
	}

	var req models.CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var faq models.FAQ
	if err := db.First(&faq, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "FAQ not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve FAQ", err)
		return
	}

	updates := map[string]interface{}{
		"question": req.Question,
		"answer":   req.Answer,
		"position": req.Position,
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if err := db.Model(&faq).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update FAQ", err)
		return
	}

	c.JSON(http.StatusOK, faq)
}

// DeleteFAQ removes an FAQ entry
func DeleteFAQ(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid FAQ ID", err)
		return
	}

	db := database.GetDB()
	res := db.Delete(&models.FAQ{}, uint(id))
	if res.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete FAQ", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		handleError(c, http.StatusNotFound, "FAQ not found", fmt.Errorf("delete of missing FAQ %d", id))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
