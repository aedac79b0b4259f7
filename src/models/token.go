package models

import (
	"github.com/google/uuid"
)

type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"-"`
	UserID    uuid.UUID `gorm:"index;type:uuid" json:"-"`
	Token     string    `gorm:"uniqueIndex" json:"-"`
	ExpiresAt int64     `json:"-"`
	UsedAt    *int64    `json:"-"`
	CreatedAt int64     `gorm:"autoCreateTime" json:"-"`
}

func (t *PasswordResetToken) Usable(now int64) bool {
	return t.UsedAt == nil && t.ExpiresAt >= now
}
