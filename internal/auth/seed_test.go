package auth

import (
	"fmt"
	"testing"

	"clubcare/internal/database"
	"clubcare/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedTestDB(t *testing.T) *gorm.DB {
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

func TestEnsureAdminAccountCreatesFromEnv(t *testing.T) {
	db := newSeedTestDB(t)
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "correct-horse-1")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	if err := EnsureAdminAccount(db); err != nil {
		t.Fatalf("EnsureAdminAccount failed: %v", err)
	}

	var account models.AdminAccount
	if err := db.Where("username = ?", "admin").First(&account).Error; err != nil {
		t.Fatalf("bootstrap account not created: %v", err)
	}
	if account.Email != "admin@example.com" {
		t.Errorf("account email = %q, want admin@example.com", account.Email)
	}
	if !VerifyPassword(account.HashedPass, "correct-horse-1") {
		t.Error("stored hash does not verify against the configured password")
	}
}

func TestEnsureAdminAccountIsIdempotent(t *testing.T) {
	db := newSeedTestDB(t)
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "correct-horse-1")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	if err := EnsureAdminAccount(db); err != nil {
		t.Fatalf("first EnsureAdminAccount failed: %v", err)
	}

	// A later restart with a rotated password must not overwrite the account
	t.Setenv("ADMIN_PASSWORD", "different-pass-2")
	if err := EnsureAdminAccount(db); err != nil {
		t.Fatalf("second EnsureAdminAccount failed: %v", err)
	}

	var count int64
	db.Model(&models.AdminAccount{}).Count(&count)
	if count != 1 {
		t.Fatalf("admin account count = %d, want 1", count)
	}

	var account models.AdminAccount
	db.Where("username = ?", "admin").First(&account)
	if !VerifyPassword(account.HashedPass, "correct-horse-1") {
		t.Error("existing account hash was overwritten")
	}
}

func TestEnsureAdminAccountRejectsWeakPassword(t *testing.T) {
	db := newSeedTestDB(t)
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "short")

	if err := EnsureAdminAccount(db); err == nil {
		t.Fatal("expected weak ADMIN_PASSWORD to be rejected")
	}

	var count int64
	db.Model(&models.AdminAccount{}).Count(&count)
	if count != 0 {
		t.Errorf("account created despite weak password, count = %d", count)
	}
}

func TestEnsureAdminAccountSkipsWhenUnconfigured(t *testing.T) {
	db := newSeedTestDB(t)
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")

	if err := EnsureAdminAccount(db); err != nil {
		t.Fatalf("EnsureAdminAccount without env should be a no-op, got %v", err)
	}

	var count int64
	db.Model(&models.AdminAccount{}).Count(&count)
	if count != 0 {
		t.Errorf("account created without configuration, count = %d", count)
	}
}
