package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"clubcare/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
// Each test gets its own named shared-cache DSN so the pool's connections
// all see the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type pushCall struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// fakePusher records every push and optionally fails them all
type fakePusher struct {
	mu    sync.Mutex
	calls []pushCall
	err   error
}

func (f *fakePusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushCall{Token: token, Title: title, Body: body, Data: data})
	return f.err
}

func (f *fakePusher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
