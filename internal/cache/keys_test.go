package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The key strings are a cross-process contract; a change here silently breaks
// invalidation between the catalog and admin services.
func TestCatalogKeyContract(t *testing.T) {
	require.Equal(t, "albums", KeyAlbums)
	require.Equal(t, "songs", KeySongs)
	require.Equal(t, "album_songs_283fca54-8b4b-4c74-8694-f78e1a3932bb", AlbumSongsKey("283fca54-8b4b-4c74-8694-f78e1a3932bb"))
	require.Equal(t, 1800*time.Second, CatalogTTL)
}
