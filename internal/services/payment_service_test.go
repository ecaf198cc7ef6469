package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/database/testutil"
	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/internal/payment"
)

// fakeGateway satisfies payment.Gateway without network calls.
type fakeGateway struct {
	orders    int
	lastPaise int64
	failNext  bool
	validSig  string
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency, _ string) (*payment.Order, error) {
	if f.failNext {
		return nil, fmt.Errorf("gateway down")
	}
	f.orders++
	f.lastPaise = amountPaise
	return &payment.Order{
		ID:       fmt.Sprintf("order_%d", f.orders),
		Amount:   amountPaise,
		Currency: currency,
		Status:   "created",
	}, nil
}

func (f *fakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == f.validSig
}

func newPaymentFixture(t *testing.T) (*gorm.DB, *fakeGateway, *PaymentService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	gateway := &fakeGateway{validSig: "good-signature"}

	purchases, err := NewPurchaseService(db)
	require.NoError(t, err)
	svc, err := NewPaymentService(db, gateway, purchases)
	require.NoError(t, err)
	return db, gateway, svc
}

func TestCreateOrderSumsPricesInPaise(t *testing.T) {
	db, gateway, svc := newPaymentFixture(t)
	album := seedAlbum(t, db, "Album")
	first := seedSong(t, db, "One", 299.50, &album.ID)
	second := seedSong(t, db, "Two", 100, &album.ID)

	result, err := svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{
		SongIDs: []string{first.ID, second.ID, first.ID},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 39950, result.Amount)
	assert.EqualValues(t, 39950, gateway.lastPaise)
	assert.Equal(t, "INR", result.Currency)

	var order models.PaymentOrder
	require.NoError(t, db.First(&order, "gateway_order_id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.EqualValues(t, 39950, order.AmountPaise)
}

func TestCreateOrderRejectsFreeAndMissingSongs(t *testing.T) {
	db, _, svc := newPaymentFixture(t)
	album := seedAlbum(t, db, "Album")
	free := seedSong(t, db, "Free", 0, &album.ID)

	_, err := svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{SongIDs: []string{free.ID}})
	assert.Error(t, err)

	_, err = svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{SongIDs: []string{"missing"}})
	assert.ErrorIs(t, err, ErrSongNotFound)

	_, err = svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{SongIDs: nil})
	assert.Error(t, err)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	db, gateway, svc := newPaymentFixture(t)
	album := seedAlbum(t, db, "Album")
	song := seedSong(t, db, "Track", 99, &album.ID)
	gateway.failNext = true

	_, err := svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{SongIDs: []string{song.ID}})
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PaymentOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyAndCompleteGrantsPurchases(t *testing.T) {
	db, _, svc := newPaymentFixture(t)
	album := seedAlbum(t, db, "Album")
	song := seedSong(t, db, "Track", 199, &album.ID)

	result, err := svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{SongIDs: []string{song.ID}})
	require.NoError(t, err)

	err = svc.VerifyAndComplete(context.Background(), "user-1", VerifyPaymentInput{
		OrderID:   result.OrderID,
		PaymentID: "pay_1",
		Signature: "good-signature",
	})
	require.NoError(t, err)

	var order models.PaymentOrder
	require.NoError(t, db.First(&order, "gateway_order_id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).
		Where("user_id = ? AND song_id = ?", "user-1", song.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Replaying the callback must not duplicate anything.
	err = svc.VerifyAndComplete(context.Background(), "user-1", VerifyPaymentInput{
		OrderID:   result.OrderID,
		PaymentID: "pay_1",
		Signature: "good-signature",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	db, _, svc := newPaymentFixture(t)
	album := seedAlbum(t, db, "Album")
	song := seedSong(t, db, "Track", 199, &album.ID)

	result, err := svc.CreateOrder(context.Background(), "user-1", CreateOrderInput{SongIDs: []string{song.ID}})
	require.NoError(t, err)

	err = svc.VerifyAndComplete(context.Background(), "user-1", VerifyPaymentInput{
		OrderID:   result.OrderID,
		PaymentID: "pay_1",
		Signature: "tampered",
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var order models.PaymentOrder
	require.NoError(t, db.First(&order, "gateway_order_id = ?", result.OrderID).Error)
	assert.Equal(t, models.OrderStatusFailed, order.Status)

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyUnknownOrder(t *testing.T) {
	_, _, svc := newPaymentFixture(t)

	err := svc.VerifyAndComplete(context.Background(), "user-1", VerifyPaymentInput{
		OrderID: "order_unknown", PaymentID: "pay_1", Signature: "good-signature",
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHasPurchased(t *testing.T) {
	db, _, _ := newPaymentFixture(t)
	purchases, err := NewPurchaseService(db)
	require.NoError(t, err)

	owned, err := purchases.HasPurchased(context.Background(), "user-1", "song-1")
	require.NoError(t, err)
	assert.False(t, owned)

	require.NoError(t, purchases.Grant(context.Background(), "user-1", "order-1", []string{"song-1"}))

	owned, err = purchases.HasPurchased(context.Background(), "user-1", "song-1")
	require.NoError(t, err)
	assert.True(t, owned)
}
