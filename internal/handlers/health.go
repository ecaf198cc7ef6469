package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/pkg/response"
)

// Health reports process liveness plus the state of the database and cache.
// A degraded cache does not fail the check; the services run without it.
func Health(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(requestContext(c)) != nil {
				dbStatus = "down"
			}
		}

		cacheStatus := "ok"
		if store == nil || !store.Available() {
			cacheStatus = "down"
		}

		payload := gin.H{
			"status":   "ok",
			"database": dbStatus,
			"cache":    cacheStatus,
		}
		if dbStatus != "ok" {
			payload["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, payload)
			return
		}
		response.Success(c, http.StatusOK, payload)
	}
}
