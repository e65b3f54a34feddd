package handlers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"clubcare/internal/database"
	"clubcare/internal/services"
	"clubcare/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultRetentionDays = 90
	defaultCleanupHour   = 3
)

// DispatchReminders is the cron-triggered dispatch endpoint. The platform
// scheduler calls it periodically; the handler itself is stateless, so a
// missed or repeated trigger is harmless. dryRun=true reports what would be
// sent without writing or pushing anything.
func DispatchReminders(c *gin.Context) {
	today := utils.Today()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := utils.ParseDay(dateStr)
		if err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		today = parsed
	}

	dryRun := c.Query("dryRun") == "true"

	svc := services.NewDispatchService(database.GetDB(), pusher)
	summary, err := svc.ProcessPending(c.Request.Context(), today, dryRun)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Dispatch run failed", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CleanupOldData is the cron-triggered retention endpoint. It self-gates on
// the configured cleanup hour, so the scheduler can simply call it hourly.
func CleanupOldData(c *gin.Context) {
	retentionDays := envInt("RETENTION_DAYS", defaultRetentionDays)
	cleanupHour := envInt("CLEANUP_HOUR", defaultCleanupHour)

	svc := services.NewRetentionService(database.GetDB())
	summary, err := svc.PurgeOld(time.Now(), retentionDays, cleanupHour)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Cleanup run failed", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			return val
		}
	}
	return fallback
}
