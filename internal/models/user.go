package models

import (
	"strings"

	"gorm.io/datatypes"
)

// Roles recognised across the services.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account able to browse, buy, and (with the admin role) manage the catalog.
type User struct {
	BaseModel

	Name         string         `gorm:"type:varchar(120);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(20);not null;default:user" json:"role"`
	Playlist     datatypes.JSON `gorm:"type:json" json:"playlist"`
}

// Normalise lower-cases the email and defaults the role.
func (u *User) Normalise() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if strings.TrimSpace(u.Role) == "" {
		u.Role = RoleUser
	}
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}
