package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/payment"
	"github.com/soundbay/soundbay/internal/services"
	"github.com/soundbay/soundbay/pkg/response"
)

// PaymentHandler creates gateway orders and completes verified payments.
type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(db *gorm.DB, gateway payment.Gateway) (*PaymentHandler, error) {
	purchases, err := services.NewPurchaseService(db)
	if err != nil {
		return nil, err
	}
	svc, err := services.NewPaymentService(db, gateway, purchases)
	if err != nil {
		return nil, err
	}
	return &PaymentHandler{service: svc}, nil
}

// POST /api/v1/order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var body services.CreateOrderInput
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.service.CreateOrder(requestContext(c), currentUserID(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// POST /api/v1/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var body services.VerifyPaymentInput
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.service.VerifyAndComplete(requestContext(c), currentUserID(c), body); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "payment verified", nil)
}
