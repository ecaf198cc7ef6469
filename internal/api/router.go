package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/handlers"
	"github.com/soundbay/soundbay/internal/middleware"
)

// baseEngine wires the middleware stack shared by every service binary.
func baseEngine(db *gorm.DB, store cache.Store) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	r.GET("/health", handlers.Health(db, store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func validate(db *gorm.DB, store cache.Store, jwt *iauth.JWTService) error {
	if db == nil {
		return fmt.Errorf("database handle must be provided")
	}
	if store == nil {
		return fmt.Errorf("cache store must be provided")
	}
	if jwt == nil {
		return fmt.Errorf("jwt service must be provided")
	}
	return nil
}
