package database

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Album{},
		&models.Song{},
		&models.User{},
		&models.Purchase{},
		&models.PaymentOrder{},
		&models.CacheEntry{},
	)
}

// SeedData provisions a bootstrap administrator account when
// SOUNDBAY_ADMIN_EMAIL and SOUNDBAY_ADMIN_PASSWORD are set and no admin exists.
func SeedData(db *gorm.DB) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SOUNDBAY_ADMIN_EMAIL")))
	password := os.Getenv("SOUNDBAY_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	admin.Normalise()

	return db.Where(models.User{Email: admin.Email}).Attrs(admin).FirstOrCreate(&models.User{}).Error
}
