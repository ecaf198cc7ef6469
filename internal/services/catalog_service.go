package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/pkg/logger"
	"github.com/soundbay/soundbay/pkg/metrics"
)

// AlbumWithSongs is the cached payload for a single album detail view.
type AlbumWithSongs struct {
	Songs []models.Song `json:"songs"`
	Album models.Album  `json:"album"`
}

// SongDetails pairs a song with the caller's playback entitlement.
// Playable is true for free songs and for songs the user purchased; the
// entitlement is computed per request and never cached. When Playable is
// false the song's audio URL is withheld.
type SongDetails struct {
	Song     models.Song `json:"song"`
	Playable bool        `json:"playable"`
}

// CatalogService serves catalog reads through the shared cache, falling back
// to the database on a miss and repopulating best-effort.
type CatalogService struct {
	db    *gorm.DB
	store cache.Store
	log   *zap.Logger
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(db *gorm.DB, store cache.Store) (*CatalogService, error) {
	if db == nil {
		return nil, errors.New("catalog service: db is required")
	}
	if store == nil {
		return nil, errors.New("catalog service: cache store is required")
	}
	return &CatalogService{
		db:    db,
		store: store,
		log:   logger.WithModule("services.catalog"),
	}, nil
}

// ListAlbums returns every album, newest first.
func (s *CatalogService) ListAlbums(ctx context.Context) ([]models.Album, error) {
	ctx = ensureContext(ctx)

	var albums []models.Album
	if s.fromCache(ctx, cache.KeyAlbums, &albums) {
		return albums, nil
	}

	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list albums: %w", err)
	}

	s.populate(ctx, cache.KeyAlbums, albums)
	return albums, nil
}

// ListSongs returns every song, newest first.
func (s *CatalogService) ListSongs(ctx context.Context) ([]models.Song, error) {
	ctx = ensureContext(ctx)

	var songs []models.Song
	if s.fromCache(ctx, cache.KeySongs, &songs) {
		return songs, nil
	}

	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list songs: %w", err)
	}

	s.populate(ctx, cache.KeySongs, songs)
	return songs, nil
}

// GetAlbumWithSongs returns one album together with its songs. A missing
// album surfaces as not-found without touching the cache.
func (s *CatalogService) GetAlbumWithSongs(ctx context.Context, albumID string) (*AlbumWithSongs, error) {
	ctx = ensureContext(ctx)
	albumID = strings.TrimSpace(albumID)

	key := cache.AlbumSongsKey(albumID)

	var payload AlbumWithSongs
	if s.fromCache(ctx, key, &payload) {
		return &payload, nil
	}

	var album models.Album
	err := s.db.WithContext(ctx).First(&album, "id = ?", albumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog service: get album: %w", err)
	}

	var songs []models.Song
	if err := s.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("created_at ASC").
		Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list album songs: %w", err)
	}

	payload = AlbumWithSongs{Songs: songs, Album: album}
	s.populate(ctx, key, payload)
	return &payload, nil
}

// GetSong loads a single song directly from the database.
func (s *CatalogService) GetSong(ctx context.Context, songID string) (*models.Song, error) {
	ctx = ensureContext(ctx)

	var song models.Song
	err := s.db.WithContext(ctx).First(&song, "id = ?", strings.TrimSpace(songID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog service: get song: %w", err)
	}
	return &song, nil
}

// GetSongDetails resolves a song and whether the given user may play it.
// The entitlement check runs after the catalog lookup so cached rows stay
// user-independent.
func (s *CatalogService) GetSongDetails(ctx context.Context, songID, userID string) (*SongDetails, error) {
	ctx = ensureContext(ctx)

	song, err := s.GetSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	details := &SongDetails{Song: *song, Playable: song.Free()}
	if !details.Playable && userID != "" {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.Purchase{}).
			Where("user_id = ? AND song_id = ? AND status = ?", userID, song.ID, models.PurchaseStatusCompleted).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("catalog service: check purchase: %w", err)
		}
		details.Playable = count > 0
	}
	if !details.Playable {
		details.Song.Audio = ""
	}
	return details, nil
}

// ListPurchased returns the songs the user has bought, newest purchase first.
func (s *CatalogService) ListPurchased(ctx context.Context, userID string) ([]models.Song, error) {
	ctx = ensureContext(ctx)

	var songs []models.Song
	err := s.db.WithContext(ctx).
		Joins("JOIN purchases ON purchases.song_id = songs.id").
		Where("purchases.user_id = ? AND purchases.status = ?", userID, models.PurchaseStatusCompleted).
		Order("purchases.created_at DESC").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("catalog service: list purchased: %w", err)
	}
	return songs, nil
}

// fromCache attempts a cache read. Any failure counts as a miss; cache health
// never decides the outcome of a read.
func (s *CatalogService) fromCache(ctx context.Context, key string, out any) bool {
	if !s.store.Available() {
		metrics.CacheMisses.WithLabelValues(keyKind(key)).Inc()
		return false
	}

	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed, falling back to database",
			zap.String("key", key), zap.Error(err))
		metrics.CacheMisses.WithLabelValues(keyKind(key)).Inc()
		return false
	}
	if !ok {
		metrics.CacheMisses.WithLabelValues(keyKind(key)).Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("cache entry undecodable, falling back to database",
			zap.String("key", key), zap.Error(err))
		metrics.CacheMisses.WithLabelValues(keyKind(key)).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(keyKind(key)).Inc()
	return true
}

// populate writes a fresh value behind the standard catalog TTL. Failures are
// logged and swallowed.
func (s *CatalogService) populate(ctx context.Context, key string, value any) {
	if !s.store.Available() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("failed to encode cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, data, cache.CatalogTTL); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// keyKind collapses parameterized keys to a bounded metric label.
func keyKind(key string) string {
	if key == cache.KeyAlbums || key == cache.KeySongs {
		return key
	}
	return "album_songs"
}
