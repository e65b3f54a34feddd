package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"clubcare/internal/database"
	"clubcare/internal/models"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetWooOrders proxies the user's WooCommerce order list
func GetWooOrders(c *gin.Context) {
	if wooService == nil {
		handleError(c, http.StatusServiceUnavailable, "WooCommerce proxy not configured", fmt.Errorf("woo service missing"))
		return
	}

	user, ok := resolveWooUser(c)
	if !ok {
		return
	}

	refresh := c.Query("refresh") == "true"
	orders, err := wooService.GetOrders(c.Request.Context(), user.WpUserID, refresh)
	if err != nil {
		handleError(c, http.StatusBadGateway, "Failed to fetch orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetWooSubscriptions proxies the user's WooCommerce subscription list
func GetWooSubscriptions(c *gin.Context) {
	if wooService == nil {
		handleError(c, http.StatusServiceUnavailable, "WooCommerce proxy not configured", fmt.Errorf("woo service missing"))
		return
	}

	user, ok := resolveWooUser(c)
	if !ok {
		return
	}

	refresh := c.Query("refresh") == "true"
	subs, err := wooService.GetSubscriptions(c.Request.Context(), user.WpUserID, refresh)
	if err != nil {
		handleError(c, http.StatusBadGateway, "Failed to fetch subscriptions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// resolveWooUser loads the user and requires a linked WordPress account
func resolveWooUser(c *gin.Context) (*models.User, bool) {
	userID := parseUintQuery(c, "userId")
	wpUserID := parseUintQuery(c, "wpUserId")
	email := c.Query("email")

	if userID == 0 && wpUserID == 0 && email == "" {
		handleError(c, http.StatusBadRequest, "userId, wpUserId or email is required",
			fmt.Errorf("woo proxy query without user identifier"))
		return nil, false
	}

	db := database.GetDB()
	user, err := resolveUser(db, userID, wpUserID, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "User not found", err)
			return nil, false
		}
		handleError(c, http.StatusInternalServerError, "Failed to resolve user", err)
		return nil, false
	}

	if user.WpUserID == 0 {
		handleError(c, http.StatusBadRequest, "User has no linked WooCommerce account",
			fmt.Errorf("user %d has no wp_user_id", user.ID))
		return nil, false
	}

	return user, true
}

// WooWebhook records an inbound WooCommerce webhook and, for subscription
// events, syncs the user's membership tier from the payload
func WooWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		handleError(c, http.StatusBadRequest, "Failed to read payload", err)
		return
	}
	if !json.Valid(payload) {
		handleError(c, http.StatusBadRequest, "Payload is not valid JSON", fmt.Errorf("invalid webhook payload"))
		return
	}

	topic := c.GetHeader("X-WC-Webhook-Topic")

	db := database.GetDB()
	entry := models.WebhookLog{
		Topic:     topic,
		Payload:   payload,
		SourceIP:  utils.ClientIP(c),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&entry).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to record webhook", err)
		return
	}

	// Membership sync is a best-effort side effect of recording the webhook
	if topic == "subscription.updated" || topic == "subscription.created" {
		syncMembershipFromWebhook(db, payload)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": entry.ID})
}

// syncMembershipFromWebhook maps a subscription payload onto the user's
// membership tier; failures are logged only
func syncMembershipFromWebhook(db *gorm.DB, payload []byte) {
	var event struct {
		CustomerID uint   `json:"customer_id"`
		Status     string `json:"status"`
		LineItems  []struct {
			Name string `json:"name"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("Warning: failed to decode subscription webhook: %v", err)
		return
	}
	if event.CustomerID == 0 || event.Status == "" {
		log.Printf("Warning: subscription webhook missing customer_id or status")
		return
	}

	tier := "basic"
	if event.Status == "active" {
		tier = "member"
		if len(event.LineItems) > 0 && event.LineItems[0].Name != "" {
			tier = event.LineItems[0].Name
		}
	}

	res := db.Model(&models.User{}).
		Where("wp_user_id = ?", event.CustomerID).
		Update("membership_tier", tier)
	if res.Error != nil {
		log.Printf("Warning: failed to sync membership for wp user %d: %v", event.CustomerID, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		log.Printf("Warning: subscription webhook for unknown wp user %d", event.CustomerID)
	}
}
