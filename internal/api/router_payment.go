package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/handlers"
	"github.com/soundbay/soundbay/internal/middleware"
	"github.com/soundbay/soundbay/internal/payment"
)

// NewPaymentRouter builds the payment service.
func NewPaymentRouter(db *gorm.DB, store cache.Store, jwt *iauth.JWTService, gateway payment.Gateway) (*gin.Engine, error) {
	if err := validate(db, store, jwt); err != nil {
		return nil, err
	}

	r := baseEngine(db, store)

	handler, err := handlers.NewPaymentHandler(db, gateway)
	if err != nil {
		return nil, err
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(jwt))
	{
		v1.POST("/order", handler.CreateOrder)
		v1.POST("/verify", handler.VerifyPayment)
	}

	return r, nil
}
