package handlers

import (
	"log"
	"net/http"
	"os"

	"clubcare/internal/database"
	"clubcare/internal/services"

	"github.com/gin-gonic/gin"
)

// ExportBackup returns a full JSON snapshot of the backend's owned entities.
// The platform's request deadline (300s) bounds the export; it is not
// transactional across entities.
func ExportBackup(c *gin.Context) {
	svc := services.NewBackupService(database.GetDB())
	snapshot, err := svc.Export()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Export failed", err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=clubcare-backup-"+snapshot.ID+".json")
	c.JSON(http.StatusOK, snapshot)
}

// ImportBackup restores a snapshot produced by ExportBackup. Conflicting
// rows are skipped, so re-importing is safe; the response reports how many
// rows were actually restored per entity.
func ImportBackup(c *gin.Context) {
	var snapshot services.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid snapshot", err)
		return
	}

	svc := services.NewBackupService(database.GetDB())
	restored := svc.Import(&snapshot)

	// Operator report is best-effort
	if emailService != nil {
		if operator := os.Getenv("BACKUP_REPORT_EMAIL"); operator != "" {
			if err := emailService.SendBackupReport(operator, snapshot.ID, restored); err != nil {
				log.Printf("Warning: failed to send backup report: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "snapshot_id": snapshot.ID, "restored": restored})
}
