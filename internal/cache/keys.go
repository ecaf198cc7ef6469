package cache

import "time"

// Catalog cache key contract.
//
// The catalog reader and the admin mutator run as separate processes and
// coordinate exclusively through these keys: the mutator deletes keys it never
// reads, so both sides must compile the exact same formatting logic. Treat any
// change here as a wire-protocol change that must ship to both services
// together.
const (
	// KeyAlbums caches the serialized list of all albums.
	KeyAlbums = "albums"

	// KeySongs caches the serialized list of all songs.
	KeySongs = "songs"

	albumSongsPrefix = "album_songs_"
)

// CatalogTTL bounds how stale a catalog entry can get if an invalidation is
// lost to the read-repopulation race. Mutations delete keys synchronously;
// the TTL is the safety net, not the primary consistency mechanism.
const CatalogTTL = 1800 * time.Second

// AlbumSongsKey derives the per-album cache key for "songs of album X".
// The album id is embedded so the mutator can derive the key for invalidation
// without any shared lookup table.
func AlbumSongsKey(albumID string) string {
	return albumSongsPrefix + albumID
}
