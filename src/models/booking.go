package models

import (
	"rba/src/types"

	"github.com/google/uuid"
)

type Booking struct {
	ID        uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	RoomID    uuid.UUID           `gorm:"index;type:uuid" json:"roomId"`
	UserID    uuid.UUID           `gorm:"index;type:uuid" json:"userId"`
	StartTime int64               `json:"startTime"`
	// EndTime is exclusive: the booking occupies [StartTime, EndTime).
	EndTime   int64               `json:"endTime"`
	Status    types.BookingStatus `gorm:"index;default:'PENDING'" json:"status"`
	Equipment types.StringList    `gorm:"type:text;default:'[]'" json:"equipment"`
	Purpose   *string             `json:"purpose,omitempty"`

	Room      *Room             `gorm:"foreignKey:room_id" json:"room,omitempty"`
	User      *User             `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Recurring *RecurringBooking `gorm:"foreignKey:booking_id" json:"recurring,omitempty"`
	Resources []*Resource       `gorm:"many2many:booking_resources;" json:"resources,omitempty"`

	types.Timestamps
}

// RecurringBooking is recurrence metadata attached 1:1 to a parent booking.
// It does not generate additional booking rows.
type RecurringBooking struct {
	ID        uuid.UUID               `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID               `gorm:"index;type:uuid" json:"bookingId"`
	Pattern   types.RecurrencePattern `json:"pattern"`
	StartDate int64                   `json:"startDate"`
	EndDate   int64                   `json:"endDate"`

	types.Timestamps
}

type BookingResource struct {
	ID         uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	BookingID  uuid.UUID `gorm:"index:booking_resource;type:uuid" json:"bookingId"`
	ResourceID uuid.UUID `gorm:"index:booking_resource;type:uuid" json:"resourceId"`
	CreatedAt  int64     `gorm:"autoCreateTime" json:"createdAt,omitempty"`
}
