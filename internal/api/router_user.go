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

// NewUserRouter builds the account service.
func NewUserRouter(db *gorm.DB, store cache.Store, jwt *iauth.JWTService) (*gin.Engine, error) {
	if err := validate(db, store, jwt); err != nil {
		return nil, err
	}

	r := baseEngine(db, store)

	handler, err := handlers.NewUserHandler(db, jwt)
	if err != nil {
		return nil, err
	}

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.RateLimit(store, 30, time.Minute))
		public.POST("/user/register", handler.Register)
		public.POST("/user/login", handler.Login)

		private := v1.Group("")
		private.Use(middleware.Auth(jwt))
		private.GET("/user/me", handler.Me)
		private.GET("/user/purchased/:songID", handler.HasPurchased)
		private.POST("/song/:id/playlist", handler.TogglePlaylist)
	}

	return r, nil
}
