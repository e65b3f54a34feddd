package handlers

import (
	"log"
	"net/http"

	"clubcare/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	pusher       services.Pusher
	wooService   *services.WooService
	imageService *services.ImageService
	emailService *services.EmailService
)

// InitServices wires the shared service singletons into the handlers
// package. Optional collaborators may be nil; the endpoints that need them
// respond 503 when they are not configured.
func InitServices(p services.Pusher, woo *services.WooService, img *services.ImageService, email *services.EmailService) {
	pusher = p
	wooService = woo
	imageService = img
	emailService = email
}

// handleError provides a consistent way to handle and log errors. The
// underlying error detail is only echoed to the client outside release mode.
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	if status == http.StatusInternalServerError && gin.Mode() != gin.ReleaseMode && err != nil {
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}
	c.JSON(status, gin.H{"error": message})
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Clubcare API")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
