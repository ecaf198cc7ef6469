package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soundbay/soundbay/internal/models"
)

// PurchaseService records and answers song ownership.
type PurchaseService struct {
	db *gorm.DB
}

// NewPurchaseService constructs a PurchaseService instance.
func NewPurchaseService(db *gorm.DB) (*PurchaseService, error) {
	if db == nil {
		return nil, errors.New("purchase service: db is required")
	}
	return &PurchaseService{db: db}, nil
}

// HasPurchased reports whether the user owns the song.
func (s *PurchaseService) HasPurchased(ctx context.Context, userID, songID string) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("user_id = ? AND song_id = ? AND status = ?",
			strings.TrimSpace(userID), strings.TrimSpace(songID), models.PurchaseStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("purchase service: check purchase: %w", err)
	}
	return count > 0, nil
}

// Grant records ownership of the given songs for a user. Granting a song the
// user already owns is a no-op, so a replayed payment callback stays safe.
func (s *PurchaseService) Grant(ctx context.Context, userID, orderID string, songIDs []string) error {
	ctx = ensureContext(ctx)

	if len(songIDs) == 0 {
		return nil
	}

	purchases := make([]models.Purchase, 0, len(songIDs))
	for _, songID := range songIDs {
		songID = strings.TrimSpace(songID)
		if songID == "" {
			continue
		}
		purchases = append(purchases, models.Purchase{
			UserID:  userID,
			SongID:  songID,
			OrderID: orderID,
			Status:  models.PurchaseStatusCompleted,
		})
	}
	if len(purchases) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "song_id"}},
			DoNothing: true,
		}).
		Create(&purchases).Error
	if err != nil {
		return fmt.Errorf("purchase service: grant purchases: %w", err)
	}
	return nil
}
