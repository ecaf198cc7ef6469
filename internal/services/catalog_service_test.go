package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/database/testutil"
	"github.com/soundbay/soundbay/internal/models"
)

func newCatalogFixture(t *testing.T) (*gorm.DB, *cache.MemoryStore, *CatalogService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	// Frozen clock so TTL assertions compare exact durations.
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := cache.NewMemoryStore().WithClock(func() time.Time { return frozen })

	svc, err := NewCatalogService(db, store)
	require.NoError(t, err)
	return db, store, svc
}

func seedAlbum(t *testing.T, db *gorm.DB, title string) models.Album {
	t.Helper()

	album := models.Album{Title: title, Description: "desc", Thumbnail: "https://cdn/thumb.png"}
	require.NoError(t, db.Create(&album).Error)
	return album
}

func seedSong(t *testing.T, db *gorm.DB, title string, price float64, albumID *string) models.Song {
	t.Helper()

	song := models.Song{
		Title:       title,
		Description: "desc",
		Audio:       "https://cdn/audio.mp3",
		Price:       price,
		AlbumID:     albumID,
	}
	require.NoError(t, db.Create(&song).Error)
	return song
}

func TestListAlbumsPopulatesCache(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	seedAlbum(t, db, "First")

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 1)

	assert.True(t, store.Contains(cache.KeyAlbums))
	assert.Equal(t, cache.CatalogTTL, store.TTLOf(cache.KeyAlbums))

	// A second read must be served from the cache, not the database.
	seedAlbum(t, db, "Second")
	albums, err = svc.ListAlbums(context.Background())
	require.NoError(t, err)
	assert.Len(t, albums, 1)
}

func TestListSongsPopulatesCache(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	seedSong(t, db, "Track", 99, &album.ID)

	songs, err := svc.ListSongs(context.Background())
	require.NoError(t, err)
	require.Len(t, songs, 1)

	assert.True(t, store.Contains(cache.KeySongs))
	assert.Equal(t, cache.CatalogTTL, store.TTLOf(cache.KeySongs))
}

func TestGetAlbumWithSongsCachesCompositePayload(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	seedSong(t, db, "Track A", 0, &album.ID)
	seedSong(t, db, "Track B", 49, &album.ID)

	payload, err := svc.GetAlbumWithSongs(context.Background(), album.ID)
	require.NoError(t, err)
	assert.Equal(t, album.ID, payload.Album.ID)
	assert.Len(t, payload.Songs, 2)

	key := cache.AlbumSongsKey(album.ID)
	assert.True(t, store.Contains(key))
	assert.Equal(t, cache.CatalogTTL, store.TTLOf(key))
}

func TestGetAlbumNotFoundLeavesCacheUntouched(t *testing.T) {
	_, store, svc := newCatalogFixture(t)

	_, err := svc.GetAlbumWithSongs(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
	assert.False(t, store.Contains(cache.AlbumSongsKey("missing-id")))
}

func TestReadsFallBackWhenCacheDown(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	seedSong(t, db, "Track", 99, &album.ID)
	store.Fail = true

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	songs, err := svc.ListSongs(context.Background())
	require.NoError(t, err)
	assert.Len(t, songs, 1)

	payload, err := svc.GetAlbumWithSongs(context.Background(), album.ID)
	require.NoError(t, err)
	assert.Len(t, payload.Songs, 1)
}

func TestCacheExpiryFallsBackToDatabase(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	seedAlbum(t, db, "First")

	now := time.Now()
	store.WithClock(func() time.Time { return now })

	_, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	require.True(t, store.Contains(cache.KeyAlbums))

	seedAlbum(t, db, "Second")
	now = now.Add(cache.CatalogTTL + time.Second)

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	assert.Len(t, albums, 2)
}

func TestCorruptCacheEntryFallsBack(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	seedAlbum(t, db, "Album")

	require.NoError(t, store.Set(context.Background(), cache.KeyAlbums, []byte("{not json"), time.Minute))

	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	assert.Len(t, albums, 1)
}

func TestGetSongDetails(t *testing.T) {
	db, _, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	free := seedSong(t, db, "Free Track", 0, &album.ID)
	paid := seedSong(t, db, "Paid Track", 299, &album.ID)

	details, err := svc.GetSongDetails(context.Background(), free.ID, "")
	require.NoError(t, err)
	assert.True(t, details.Playable)
	assert.Equal(t, free.Audio, details.Song.Audio)

	details, err = svc.GetSongDetails(context.Background(), paid.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, details.Playable)
	assert.Empty(t, details.Song.Audio)

	require.NoError(t, db.Create(&models.Purchase{
		UserID: "user-1",
		SongID: paid.ID,
		Status: models.PurchaseStatusCompleted,
	}).Error)

	details, err = svc.GetSongDetails(context.Background(), paid.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, details.Playable)
	assert.Equal(t, paid.Audio, details.Song.Audio)

	_, err = svc.GetSongDetails(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestGetSongDetailsWithholdsAudioURL(t *testing.T) {
	db, _, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	paid := seedSong(t, db, "Paid Track", 299, &album.ID)

	details, err := svc.GetSongDetails(context.Background(), paid.ID, "user-without-purchase")
	require.NoError(t, err)
	require.False(t, details.Playable)

	// The serialized payload must not carry the audio URL for a song the
	// caller has not bought.
	body, err := json.Marshal(details)
	require.NoError(t, err)
	assert.NotContains(t, string(body), paid.Audio)

	details, err = svc.GetSongDetails(context.Background(), paid.ID, "")
	require.NoError(t, err)
	assert.Empty(t, details.Song.Audio, "anonymous caller must not receive the audio URL")
}

func TestListPurchased(t *testing.T) {
	db, _, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	owned := seedSong(t, db, "Owned", 199, &album.ID)
	seedSong(t, db, "Not Owned", 199, &album.ID)

	require.NoError(t, db.Create(&models.Purchase{
		UserID: "user-1",
		SongID: owned.ID,
		Status: models.PurchaseStatusCompleted,
	}).Error)

	songs, err := svc.ListPurchased(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, owned.ID, songs[0].ID)
}

func TestCachedPayloadRoundTripsThroughStore(t *testing.T) {
	db, store, svc := newCatalogFixture(t)
	album := seedAlbum(t, db, "Album")
	seedSong(t, db, "Track", 49, &album.ID)

	_, err := svc.GetAlbumWithSongs(context.Background(), album.ID)
	require.NoError(t, err)

	// The cached bytes must decode into the documented payload shape so the
	// other process can read what this one wrote.
	data, ok, err := store.Get(context.Background(), cache.AlbumSongsKey(album.ID))
	require.NoError(t, err)
	require.True(t, ok)

	var payload struct {
		Songs []models.Song `json:"songs"`
		Album models.Album  `json:"album"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, album.ID, payload.Album.ID)
	require.Len(t, payload.Songs, 1)
}
