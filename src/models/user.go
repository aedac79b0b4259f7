package models

import (
	"rba/src/types"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PhoneNumber  *string   `json:"phoneNumber,omitempty"`
	Role         string    `gorm:"index;default:'STAFF'" json:"role"`
	PasswordHash string    `json:"-"`
	IsSuspended  bool      `gorm:"default:false" json:"isSuspended"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
