package storage

import (
	"context"
	"io"
)

// Kind selects the destination folder for an uploaded asset.
type Kind string

const (
	KindAlbumArt  Kind = "albums"
	KindSongAudio Kind = "songs"
	KindThumbnail Kind = "thumbnails"
)

// Uploader stores a file and returns a durable public URL for it.
//
// Upload failures abort the surrounding mutation before it reaches the
// system of record, so implementations must not leave half-written state
// the catalog could reference.
type Uploader interface {
	Upload(ctx context.Context, kind Kind, filename, contentType string, body io.Reader) (string, error)
}
