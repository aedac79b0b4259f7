package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

type Timestamps struct {
	CreatedAt int64 `gorm:"autoCreateTime" json:"createdAt,omitempty"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updatedAt,omitempty"`
}

// StringList is a JSON-encoded text column. Arrays are encoded/decoded at
// the storage boundary only.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	valueString, err := json.Marshal(l)
	return string(valueString), err
}
func (l *StringList) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const (
	ROLE_SUPER_ADMIN string = "SUPER_ADMIN"
	ROLE_ADMIN       string = "ADMIN"
	ROLE_STAFF       string = "STAFF"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "PENDING"
	BOOKING_APPROVED  BookingStatus = "APPROVED"
	BOOKING_REJECTED  BookingStatus = "REJECTED"
	BOOKING_CANCELLED BookingStatus = "CANCELLED"
)

type RecurrencePattern string

const (
	RECUR_DAILY   RecurrencePattern = "DAILY"
	RECUR_WEEKLY  RecurrencePattern = "WEEKLY"
	RECUR_MONTHLY RecurrencePattern = "MONTHLY"
)

type ResourceType string

const (
	RESOURCE_EQUIPMENT ResourceType = "EQUIPMENT"
	RESOURCE_SERVICE   ResourceType = "SERVICE"
)

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type RecurringInput struct {
	Pattern   RecurrencePattern `json:"pattern" binding:"required,oneof=DAILY WEEKLY MONTHLY"`
	StartDate int64             `json:"startDate" binding:"required"`
	EndDate   int64             `json:"endDate" binding:"required,gtfield=StartDate"`
}

type CreateBookingRequestBody struct {
	RoomID    string          `json:"roomId" binding:"required,uuid"`
	StartTime int64           `json:"startTime" binding:"required"`
	EndTime   int64           `json:"endTime" binding:"required,gtfield=StartTime"`
	Equipment []string        `json:"equipment,omitempty"`
	Purpose   *string         `json:"purpose,omitempty"`
	Resources []string        `json:"resources,omitempty" binding:"omitempty,dive,uuid"`
	Recurring *RecurringInput `json:"recurring,omitempty"`
}

type UpdateBookingRequestBody struct {
	StartTime *int64         `json:"startTime,omitempty"`
	EndTime   *int64         `json:"endTime,omitempty"`
	Equipment []string       `json:"equipment,omitempty"`
	Purpose   *string        `json:"purpose,omitempty"`
	Status    *BookingStatus `json:"status,omitempty" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
}

func (b *UpdateBookingRequestBody) Empty() bool {
	return b.StartTime == nil && b.EndTime == nil && b.Equipment == nil && b.Purpose == nil && b.Status == nil
}

type BookingQueryFilters struct {
	Date   string `form:"date"`
	RoomID string `form:"roomId" binding:"omitempty,uuid"`
	UserID string `form:"userId" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=100"`
}

type CreateRoomRequestBody struct {
	Name            string   `json:"name" binding:"required"`
	Capacity        int      `json:"capacity" binding:"required,gt=0"`
	Location        string   `json:"location" binding:"required"`
	Features        []string `json:"features,omitempty"`
	AutoApprove     bool     `json:"autoApprove,omitempty"`
	RestrictedHours *string  `json:"restrictedHours,omitempty" binding:"omitempty,hourrange"`
}

type UpdateRoomRequestBody struct {
	Name            *string  `json:"name,omitempty"`
	Capacity        *int     `json:"capacity,omitempty" binding:"omitempty,gt=0"`
	Location        *string  `json:"location,omitempty"`
	Features        []string `json:"features,omitempty"`
	AutoApprove     *bool    `json:"autoApprove,omitempty"`
	RestrictedHours *string  `json:"restrictedHours,omitempty" binding:"omitempty,hourrange"`
}

func (b *UpdateRoomRequestBody) Empty() bool {
	return b.Name == nil && b.Capacity == nil && b.Location == nil &&
		b.Features == nil && b.AutoApprove == nil && b.RestrictedHours == nil
}

type SuspendRoomRequestBody struct {
	Days int `json:"days" binding:"required,gt=0"`
}

type RoomQueryFilters struct {
	Capacity int    `form:"capacity"`
	Location string `form:"location"`
	Features string `form:"features"`
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=100"`
}

type CreateResourceRequestBody struct {
	Name      string       `json:"name" binding:"required"`
	Type      ResourceType `json:"type" binding:"required,oneof=EQUIPMENT SERVICE"`
	Available *bool        `json:"available,omitempty"`
}

type UpdateResourceRequestBody struct {
	Name      *string       `json:"name,omitempty"`
	Type      *ResourceType `json:"type,omitempty" binding:"omitempty,oneof=EQUIPMENT SERVICE"`
	Available *bool         `json:"available,omitempty"`
}

func (b *UpdateResourceRequestBody) Empty() bool {
	return b.Name == nil && b.Type == nil && b.Available == nil
}

type ResourceQueryFilters struct {
	Name      string `form:"name"`
	Type      string `form:"type" binding:"omitempty,oneof=EQUIPMENT SERVICE"`
	Available *bool  `form:"available"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=100"`
}

type UpdateUserRequestBody struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Role      *string `json:"role,omitempty" binding:"omitempty,oneof=SUPER_ADMIN ADMIN STAFF"`
	Suspended *bool   `json:"suspended,omitempty"`
}

func (b *UpdateUserRequestBody) Empty() bool {
	return b.Name == nil && b.Email == nil && b.Role == nil && b.Suspended == nil
}

type SuspendUserRequestBody struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

type PasswordResetRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmBody struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type UpdateNotificationConfigBody struct {
	UserID          string  `json:"userId" binding:"required,uuid"`
	EmailEnabled    *bool   `json:"emailEnabled,omitempty"`
	SMSEnabled      *bool   `json:"smsEnabled,omitempty"`
	TelegramEnabled *bool   `json:"telegramEnabled,omitempty"`
	TelegramChatID  *string `json:"telegramChatId,omitempty"`
}

type HistoryQueryFilters struct {
	Date  string `form:"date"`
	Room  string `form:"room"`
	User  string `form:"user"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=10"`
}

type ReportQueryFilters struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	RoomName  string `form:"roomName"`
	UserID    string `form:"userId" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
}
