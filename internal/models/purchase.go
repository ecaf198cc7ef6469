package models

// PurchaseStatusCompleted is the only terminal state a purchase row can hold;
// incomplete payments never produce a purchase row.
const PurchaseStatusCompleted = "completed"

// Purchase records a user's ownership of a song after a successful payment.
type Purchase struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_song" json:"user_id"`
	SongID  string `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_song" json:"song_id"`
	OrderID string `gorm:"type:uuid;index" json:"order_id"`
	Status  string `gorm:"type:varchar(20);not null;default:completed" json:"status"`
}
