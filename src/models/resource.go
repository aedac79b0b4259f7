package models

import (
	"rba/src/types"

	"github.com/google/uuid"
)

type Resource struct {
	ID        uuid.UUID          `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name      string             `gorm:"index" json:"name"`
	Type      types.ResourceType `json:"type"`
	Available bool               `gorm:"default:true" json:"available"`

	Bookings []*Booking `gorm:"many2many:booking_resources;" json:"bookings,omitempty"`

	types.Timestamps
}
