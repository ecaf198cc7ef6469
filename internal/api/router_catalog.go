package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/handlers"
	"github.com/soundbay/soundbay/internal/middleware"
)

// NewCatalogRouter builds the public catalog reader service.
func NewCatalogRouter(db *gorm.DB, store cache.Store, jwt *iauth.JWTService) (*gin.Engine, error) {
	if err := validate(db, store, jwt); err != nil {
		return nil, err
	}

	r := baseEngine(db, store)

	handler, err := handlers.NewCatalogHandler(db, store)
	if err != nil {
		return nil, err
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(store, 300, time.Minute))
	{
		v1.GET("/album/all", handler.ListAlbums)
		v1.GET("/song/all", handler.ListSongs)
		v1.GET("/album/:id", handler.GetAlbum)
		v1.GET("/song/:id", handler.GetSong)
		v1.GET("/song/:id/details", middleware.OptionalAuth(jwt), handler.GetSongDetails)
		v1.GET("/my/purchased", middleware.Auth(jwt), handler.ListPurchased)
	}

	return r, nil
}
