package auth

import (
	"errors"
	"fmt"
	"log"
	"os"

	"clubcare/internal/models"

	"gorm.io/gorm"
)

// EnsureAdminAccount creates the bootstrap admin from ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD so a fresh deployment has a working login.
// An existing account with that username is left untouched, so rotating the
// env password does not overwrite a live credential.
func EnsureAdminAccount(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	email := os.Getenv("ADMIN_EMAIL")

	if username == "" || password == "" {
		log.Println("ADMIN_USERNAME/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	var existing models.AdminAccount
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	if err := ValidatePassword(password); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD rejected: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	account := models.AdminAccount{
		Username:   username,
		Email:      email,
		HashedPass: hash,
	}
	if err := db.Create(&account).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Printf("Created bootstrap admin account %s", username)
	return nil
}
