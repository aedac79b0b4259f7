package models

import (
	"rba/src/types"

	"github.com/google/uuid"
)

type Notification struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"index;type:uuid" json:"userId"`
	Message string    `json:"message"`
	Type    string    `json:"type"`
	Read    bool      `gorm:"default:false" json:"read"`

	types.Timestamps
}

type NotificationConfig struct {
	ID              uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID `gorm:"index;type:uuid" json:"userId"`
	EmailEnabled    bool      `gorm:"default:true" json:"emailEnabled"`
	SMSEnabled      bool      `gorm:"default:false" json:"smsEnabled"`
	TelegramEnabled bool      `gorm:"default:false" json:"telegramEnabled"`
	TelegramChatID  *string   `json:"telegramChatId,omitempty"`

	User *User `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}
