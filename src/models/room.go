package models

import (
	"rba/src/types"

	"github.com/google/uuid"
)

type Room struct {
	ID          uuid.UUID        `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string           `gorm:"index" json:"name"`
	Slug        string           `gorm:"index" json:"slug,omitempty"`
	Capacity    int              `json:"capacity"`
	Location    string           `json:"location"`
	Features    types.StringList `gorm:"type:text;default:'[]'" json:"features"`
	AutoApprove bool             `gorm:"default:false" json:"autoApprove"`
	// RestrictedHours is a "HH:MM-HH:MM" descriptor; nil means unrestricted.
	RestrictedHours *string `json:"restrictedHours,omitempty"`
	// SuspendedUntil is a unix timestamp; the room is not offered for new
	// bookings until it passes. There is no un-suspension trigger, the value
	// simply expires against the clock at read time.
	SuspendedUntil *int64 `json:"suspendedUntil,omitempty"`

	Bookings []Booking `gorm:"foreignKey:room_id" json:"bookings,omitempty"`

	types.Timestamps
}
