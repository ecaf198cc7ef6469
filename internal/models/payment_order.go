package models

import (
	"gorm.io/datatypes"
)

// Payment order lifecycle states.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// PaymentOrder tracks a gateway order covering one or more songs.
// AmountPaise stores the charged amount in the gateway's smallest unit.
type PaymentOrder struct {
	BaseModel

	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	GatewayOrderID string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"gateway_order_id"`
	AmountPaise    int64          `gorm:"not null" json:"amount_paise"`
	Currency       string         `gorm:"type:varchar(8);not null;default:INR" json:"currency"`
	SongIDs        datatypes.JSON `gorm:"type:json" json:"song_ids"`
	Status         string         `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
}
