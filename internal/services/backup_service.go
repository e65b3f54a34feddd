package services

import (
	"fmt"
	"log"
	"time"

	"clubcare/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is a full JSON export of the backend's owned entities.
// Import is per-entity best-effort: one bad entity does not roll back the
// others (the platform's request deadline makes cross-entity transactions
// impractical for large snapshots).
type Snapshot struct {
	ID        string                         `json:"id"`
	CreatedAt time.Time                      `json:"created_at"`
	Users     []models.User                  `json:"users"`
	Medicines []models.Medicine              `json:"medicines"`
	Blogs     []models.Blog                  `json:"blogs"`
	FAQs      []models.FAQ                   `json:"faqs"`
	CheckIns  []models.CheckIn               `json:"check_ins"`
	Reminders []models.ScheduledNotification `json:"reminders"`
}

// BackupService exports and imports entity snapshots
type BackupService struct {
	db *gorm.DB
}

func NewBackupService(db *gorm.DB) *BackupService {
	return &BackupService{db: db}
}

// Export collects all owned entities into a snapshot
func (s *BackupService) Export() (*Snapshot, error) {
	snapshot := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.db.Find(&snapshot.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.db.Find(&snapshot.Medicines).Error; err != nil {
		return nil, fmt.Errorf("failed to export medicines: %w", err)
	}
	if err := s.db.Find(&snapshot.Blogs).Error; err != nil {
		return nil, fmt.Errorf("failed to export blogs: %w", err)
	}
	if err := s.db.Find(&snapshot.FAQs).Error; err != nil {
		return nil, fmt.Errorf("failed to export FAQs: %w", err)
	}
	if err := s.db.Find(&snapshot.CheckIns).Error; err != nil {
		return nil, fmt.Errorf("failed to export check-ins: %w", err)
	}
	if err := s.db.Find(&snapshot.Reminders).Error; err != nil {
		return nil, fmt.Errorf("failed to export reminders: %w", err)
	}

	return snapshot, nil
}

// Import restores a snapshot. Existing rows win: conflicts on primary or
// unique keys are skipped, so re-importing the same snapshot is safe.
// Returns restored counts per entity.
func (s *BackupService) Import(snapshot *Snapshot) map[string]int {
	restored := make(map[string]int)

	restored["users"] = s.importBatch("users", toInterfaceSlice(snapshot.Users))
	restored["medicines"] = s.importBatch("medicines", toInterfaceSlice(snapshot.Medicines))
	restored["blogs"] = s.importBatch("blogs", toInterfaceSlice(snapshot.Blogs))
	restored["faqs"] = s.importBatch("faqs", toInterfaceSlice(snapshot.FAQs))
	restored["check_ins"] = s.importBatch("check_ins", toInterfaceSlice(snapshot.CheckIns))
	restored["reminders"] = s.importBatch("reminders", toInterfaceSlice(snapshot.Reminders))

	return restored
}

// importBatch inserts rows one at a time with conflict-skip semantics,
// counting rows that were actually created
func (s *BackupService) importBatch(entity string, rows []interface{}) int {
	count := 0
	for _, row := range rows {
		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			log.Printf("Warning: backup import of %s row failed: %v", entity, res.Error)
			continue
		}
		count += int(res.RowsAffected)
	}
	return count
}

func toInterfaceSlice[T any](items []T) []interface{} {
	out := make([]interface{}, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out
}
