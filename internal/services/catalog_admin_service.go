package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/models"
	apperrors "github.com/soundbay/soundbay/pkg/errors"
	"github.com/soundbay/soundbay/pkg/logger"
	"github.com/soundbay/soundbay/pkg/metrics"
)

// CreateAlbumInput describes the fields accepted when creating an album.
type CreateAlbumInput struct {
	Title       string
	Description string
	Thumbnail   string
}

// CreateSongInput describes the fields accepted when creating a song.
// Thumbnail is optional; the album is mandatory and must exist.
type CreateSongInput struct {
	Title       string
	Description string
	Audio       string
	Thumbnail   *string
	Price       float64
	AlbumID     string
}

// CatalogAdminService performs admin mutations against the system of record
// and invalidates exactly the cache keys each mutation can make stale.
//
// Invalidation is best-effort and runs only after the database write has
// committed. A write that succeeds is never rolled back because the cache
// could not be reached.
type CatalogAdminService struct {
	db    *gorm.DB
	store cache.Store
	log   *zap.Logger
}

// NewCatalogAdminService constructs a CatalogAdminService instance.
func NewCatalogAdminService(db *gorm.DB, store cache.Store) (*CatalogAdminService, error) {
	if db == nil {
		return nil, errors.New("catalog admin service: db is required")
	}
	if store == nil {
		return nil, errors.New("catalog admin service: cache store is required")
	}
	return &CatalogAdminService{
		db:    db,
		store: store,
		log:   logger.WithModule("services.catalog_admin"),
	}, nil
}

// CreateAlbum inserts a new album and invalidates the album listing.
func (s *CatalogAdminService) CreateAlbum(ctx context.Context, input CreateAlbumInput) (*models.Album, error) {
	ctx = ensureContext(ctx)

	album := &models.Album{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Thumbnail:   strings.TrimSpace(input.Thumbnail),
	}
	if album.Title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if album.Thumbnail == "" {
		return nil, apperrors.NewBadRequest("thumbnail is required")
	}

	if err := s.db.WithContext(ctx).Create(album).Error; err != nil {
		return nil, fmt.Errorf("catalog admin service: create album: %w", err)
	}

	s.invalidate(ctx, "create_album", cache.KeyAlbums)
	return album, nil
}

// CreateSong inserts a new song under an existing album and invalidates the
// song listing plus that album's detail view.
func (s *CatalogAdminService) CreateSong(ctx context.Context, input CreateSongInput) (*models.Song, error) {
	ctx = ensureContext(ctx)

	song := &models.Song{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Audio:       strings.TrimSpace(input.Audio),
		Thumbnail:   input.Thumbnail,
		Price:       input.Price,
	}
	albumID := strings.TrimSpace(input.AlbumID)

	if song.Title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if song.Audio == "" {
		return nil, apperrors.NewBadRequest("audio is required")
	}
	if albumID == "" {
		return nil, apperrors.NewBadRequest("album id is required")
	}
	if err := validPrice(input.Price); err != nil {
		return nil, err
	}

	var album models.Album
	err := s.db.WithContext(ctx).First(&album, "id = ?", albumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog admin service: load album: %w", err)
	}
	song.AlbumID = &album.ID

	if err := s.db.WithContext(ctx).Create(song).Error; err != nil {
		return nil, fmt.Errorf("catalog admin service: create song: %w", err)
	}

	s.invalidate(ctx, "create_song", cache.KeySongs, cache.AlbumSongsKey(album.ID))
	return song, nil
}

// UpdateSongThumbnail replaces the thumbnail URL on a song.
func (s *CatalogAdminService) UpdateSongThumbnail(ctx context.Context, songID, thumbnail string) (*models.Song, error) {
	ctx = ensureContext(ctx)

	thumbnail = strings.TrimSpace(thumbnail)
	if thumbnail == "" {
		return nil, apperrors.NewBadRequest("thumbnail is required")
	}

	song, err := s.loadSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(song).Update("thumbnail", thumbnail).Error; err != nil {
		return nil, fmt.Errorf("catalog admin service: update thumbnail: %w", err)
	}
	song.Thumbnail = &thumbnail

	s.invalidate(ctx, "update_song_thumbnail", songKeys(song)...)
	return song, nil
}

// UpdateSongPrice changes the price of a song. A zero price makes it free.
func (s *CatalogAdminService) UpdateSongPrice(ctx context.Context, songID string, price float64) (*models.Song, error) {
	ctx = ensureContext(ctx)

	if err := validPrice(price); err != nil {
		return nil, err
	}

	song, err := s.loadSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(song).Update("price", price).Error; err != nil {
		return nil, fmt.Errorf("catalog admin service: update price: %w", err)
	}
	song.Price = price

	s.invalidate(ctx, "update_song_price", songKeys(song)...)
	return song, nil
}

// DeleteAlbum removes an album and every song that belongs to it. Dependent
// songs are deleted before the album row inside one transaction.
func (s *CatalogAdminService) DeleteAlbum(ctx context.Context, albumID string) error {
	ctx = ensureContext(ctx)
	albumID = strings.TrimSpace(albumID)

	var album models.Album
	err := s.db.WithContext(ctx).First(&album, "id = ?", albumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAlbumNotFound
	}
	if err != nil {
		return fmt.Errorf("catalog admin service: load album: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", album.ID).Delete(&models.Song{}).Error; err != nil {
			return err
		}
		return tx.Delete(&album).Error
	})
	if err != nil {
		return fmt.Errorf("catalog admin service: delete album: %w", err)
	}

	s.invalidate(ctx, "delete_album",
		cache.KeyAlbums, cache.KeySongs, cache.AlbumSongsKey(album.ID))
	return nil
}

// DeleteSong removes a single song.
func (s *CatalogAdminService) DeleteSong(ctx context.Context, songID string) error {
	ctx = ensureContext(ctx)

	song, err := s.loadSong(ctx, songID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(song).Error; err != nil {
		return fmt.Errorf("catalog admin service: delete song: %w", err)
	}

	s.invalidate(ctx, "delete_song", songKeys(song)...)
	return nil
}

func (s *CatalogAdminService) loadSong(ctx context.Context, songID string) (*models.Song, error) {
	var song models.Song
	err := s.db.WithContext(ctx).First(&song, "id = ?", strings.TrimSpace(songID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog admin service: load song: %w", err)
	}
	return &song, nil
}

// invalidate deletes the given keys from the shared cache after a committed
// write. Skipped silently when the cache is down; a failed delete is logged
// and never propagated.
func (s *CatalogAdminService) invalidate(ctx context.Context, mutation string, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if !s.store.Available() {
		s.log.Warn("cache unavailable, skipping invalidation",
			zap.String("mutation", mutation), zap.Strings("keys", keys))
		return
	}

	if err := s.store.Delete(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed",
			zap.String("mutation", mutation), zap.Strings("keys", keys), zap.Error(err))
		return
	}

	metrics.CacheInvalidations.WithLabelValues(mutation).Inc()
	s.log.Debug("cache invalidated",
		zap.String("mutation", mutation), zap.Strings("keys", keys))
}

// songKeys returns the keys a song mutation can make stale. The per-album
// key is included only when the song belongs to an album.
func songKeys(song *models.Song) []string {
	keys := []string{cache.KeySongs}
	if song.AlbumID != nil && *song.AlbumID != "" {
		keys = append(keys, cache.AlbumSongsKey(*song.AlbumID))
	}
	return keys
}

func validPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return apperrors.NewBadRequest("price must be a non-negative number")
	}
	return nil
}
