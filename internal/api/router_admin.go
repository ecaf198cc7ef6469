package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/handlers"
	"github.com/soundbay/soundbay/internal/middleware"
	"github.com/soundbay/soundbay/internal/storage"
)

// NewAdminRouter builds the catalog mutator service. Every route requires an
// authenticated admin before any validation or database work happens.
func NewAdminRouter(db *gorm.DB, store cache.Store, jwt *iauth.JWTService, uploader storage.Uploader) (*gin.Engine, error) {
	if err := validate(db, store, jwt); err != nil {
		return nil, err
	}

	r := baseEngine(db, store)

	handler, err := handlers.NewAdminHandler(db, store, uploader)
	if err != nil {
		return nil, err
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(jwt), middleware.RequireAdmin())
	{
		v1.POST("/album/new", handler.CreateAlbum)
		v1.POST("/song/new", handler.CreateSong)
		v1.POST("/song/:id", handler.UpdateSongThumbnail)
		v1.PATCH("/song/:id/price", handler.UpdateSongPrice)
		v1.DELETE("/album/:id", handler.DeleteAlbum)
		v1.DELETE("/song/:id", handler.DeleteSong)
	}

	return r, nil
}
