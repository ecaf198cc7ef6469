package models

// Song is a purchasable track. A price of zero marks the song as free.
// AlbumID is nullable; the storage constraint sets it NULL when the album row
// disappears, while the admin service additionally cascades song deletion.
type Song struct {
	BaseModel

	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description string  `gorm:"type:varchar(255);not null" json:"description"`
	Thumbnail   *string `gorm:"type:varchar(255)" json:"thumbnail,omitempty"`
	Audio       string  `gorm:"type:varchar(255);not null" json:"audio,omitempty"`
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	AlbumID     *string `gorm:"type:uuid;index" json:"album_id,omitempty"`
	Album       *Album  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// Free reports whether the song can be played without a purchase.
func (s *Song) Free() bool {
	return s.Price == 0
}
