package models

// Album groups songs under a shared title and cover thumbnail.
type Album struct {
	BaseModel

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:varchar(255);not null" json:"description"`
	Thumbnail   string `gorm:"type:varchar(255);not null" json:"thumbnail"`
}
