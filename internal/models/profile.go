package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the one-to-one application record for a User (same primary key).
// Username lookups are case-insensitive; the lowercased form is what carries
// the unique index.
type Profile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string    `gorm:"size:50;not null" json:"username"`
	UsernameLower string    `gorm:"size:50;not null;uniqueIndex" json:"-"`
	DisplayName   string    `gorm:"size:100" json:"display_name"`
	Bio           string    `gorm:"type:text" json:"bio"`
	AvatarURL     string    `gorm:"type:text" json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the username.
func (p *Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}
