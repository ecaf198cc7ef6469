package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/internal/payment"
	apperrors "github.com/soundbay/soundbay/pkg/errors"
	"github.com/soundbay/soundbay/pkg/logger"
	"github.com/soundbay/soundbay/pkg/metrics"
)

const orderCurrency = "INR"

// CreateOrderInput lists the songs a user wants to buy.
type CreateOrderInput struct {
	SongIDs []string `json:"song_ids" validate:"required,min=1,dive,required"`
}

// VerifyPaymentInput carries the gateway callback fields for verification.
type VerifyPaymentInput struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// OrderResult is returned to the client so it can launch the gateway checkout.
type OrderResult struct {
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	AmountMajor float64 `json:"amount_major"`
}

// PaymentService creates gateway orders for song purchases and completes them
// after signature verification.
type PaymentService struct {
	db        *gorm.DB
	gateway   payment.Gateway
	purchases *PurchaseService
	log       *zap.Logger
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(db *gorm.DB, gateway payment.Gateway, purchases *PurchaseService) (*PaymentService, error) {
	if db == nil {
		return nil, errors.New("payment service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("payment service: gateway is required")
	}
	if purchases == nil {
		return nil, errors.New("payment service: purchase service is required")
	}
	return &PaymentService{
		db:        db,
		gateway:   gateway,
		purchases: purchases,
		log:       logger.WithModule("services.payment"),
	}, nil
}

// CreateOrder prices the requested songs, registers a gateway order, and
// records it as pending. Free songs never reach the gateway.
func (s *PaymentService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*OrderResult, error) {
	ctx = ensureContext(ctx)

	songIDs := dedupe(input.SongIDs)
	if len(songIDs) == 0 {
		return nil, apperrors.NewBadRequest("at least one song is required")
	}

	var songs []models.Song
	if err := s.db.WithContext(ctx).Where("id IN ?", songIDs).Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("payment service: load songs: %w", err)
	}
	if len(songs) != len(songIDs) {
		return nil, ErrSongNotFound
	}

	var total float64
	for _, song := range songs {
		if song.Free() {
			return nil, apperrors.NewBadRequest("free songs cannot be purchased")
		}
		total += song.Price
	}
	amountPaise := int64(math.Round(total * 100))

	order, err := s.gateway.CreateOrder(ctx, amountPaise, orderCurrency, "")
	if err != nil {
		metrics.PaymentOrders.WithLabelValues("failed").Inc()
		return nil, apperrors.Wrap(err, "failed to create payment order")
	}

	encodedIDs, err := json.Marshal(songIDs)
	if err != nil {
		return nil, fmt.Errorf("payment service: encode song ids: %w", err)
	}

	record := &models.PaymentOrder{
		UserID:         userID,
		GatewayOrderID: order.ID,
		AmountPaise:    amountPaise,
		Currency:       orderCurrency,
		SongIDs:        datatypes.JSON(encodedIDs),
		Status:         models.OrderStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("payment service: save order: %w", err)
	}

	metrics.PaymentOrders.WithLabelValues("created").Inc()
	s.log.Info("payment order created",
		zap.String("gateway_order_id", order.ID),
		zap.Int64("amount_paise", amountPaise),
		zap.Int("songs", len(songIDs)))

	return &OrderResult{
		OrderID:     order.ID,
		Amount:      amountPaise,
		Currency:    orderCurrency,
		AmountMajor: total,
	}, nil
}

// VerifyAndComplete validates the gateway signature, marks the order
// completed, and grants the purchased songs. Verification of an already
// completed order is idempotent.
func (s *PaymentService) VerifyAndComplete(ctx context.Context, userID string, input VerifyPaymentInput) error {
	ctx = ensureContext(ctx)

	var order models.PaymentOrder
	err := s.db.WithContext(ctx).
		First(&order, "gateway_order_id = ? AND user_id = ?", strings.TrimSpace(input.OrderID), userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("payment service: load order: %w", err)
	}

	if !s.gateway.VerifySignature(input.OrderID, input.PaymentID, input.Signature) {
		metrics.PaymentOrders.WithLabelValues("failed").Inc()
		if err := s.db.WithContext(ctx).Model(&order).Update("status", models.OrderStatusFailed).Error; err != nil {
			s.log.Error("failed to mark order failed",
				zap.String("gateway_order_id", order.GatewayOrderID), zap.Error(err))
		}
		return ErrInvalidSignature
	}

	if order.Status == models.OrderStatusCompleted {
		return nil
	}

	var songIDs []string
	if err := json.Unmarshal(order.SongIDs, &songIDs); err != nil {
		return fmt.Errorf("payment service: decode song ids: %w", err)
	}

	if err := s.purchases.Grant(ctx, userID, order.ID, songIDs); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&order).Update("status", models.OrderStatusCompleted).Error; err != nil {
		return fmt.Errorf("payment service: complete order: %w", err)
	}

	metrics.PaymentOrders.WithLabelValues("completed").Inc()
	s.log.Info("payment order completed",
		zap.String("gateway_order_id", order.GatewayOrderID),
		zap.Int("songs", len(songIDs)))
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
