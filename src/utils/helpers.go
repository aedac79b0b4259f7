package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"rba/src/config"
	"rba/src/models"
	"rba/src/models/scopes"
	"rba/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Overlaps reports whether the closed-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. A booking ending exactly when another starts is
// not an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int64) bool {
	return aStart < bEnd && aEnd > bStart
}

// HasBookingConflict reports whether any APPROVED booking on the room
// overlaps [start, end). Only APPROVED bookings participate; PENDING,
// REJECTED and CANCELLED rows never block a request. exclude removes the
// booking under modification from the candidate set.
func HasBookingConflict(tx *gorm.DB, roomID uuid.UUID, start, end int64, exclude *uuid.UUID) (bool, error) {
	q := tx.
		Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Scopes(scopes.WithApprovedStatus, scopes.OverlappingRange(start, end))
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RoomBookable reports whether the room is offered for new bookings at the
// given instant: a set suspension timestamp simply expires against the
// clock, there is no un-suspension trigger.
func RoomBookable(room *models.Room, at int64) bool {
	return room.SuspendedUntil == nil || *room.SuspendedUntil <= at
}

// CanTransition enforces the booking state machine. Only PENDING→APPROVED,
// PENDING→REJECTED and APPROVED→CANCELLED are legal; cancelling a PENDING
// request goes through deletion instead. REJECTED and CANCELLED are
// terminal.
func CanTransition(from, to types.BookingStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case types.BOOKING_PENDING:
		return to == types.BOOKING_APPROVED || to == types.BOOKING_REJECTED
	case types.BOOKING_APPROVED:
		return to == types.BOOKING_CANCELLED
	default:
		return false
	}
}

func IsAdminRole(role string) bool {
	return role == types.ROLE_ADMIN || role == types.ROLE_SUPER_ADMIN
}

// DayBounds resolves a YYYY-MM-DD filter to the [startOfDay, endOfDay]
// unix-second bounds in server local time.
func DayBounds(date string) (int64, int64, error) {
	day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, date, time.Local)
	if err != nil {
		return 0, 0, err
	}
	start := day.Unix()
	return start, start + 24*60*60 - 1, nil
}

func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// GenerateResetToken returns a 32-byte random token in hex form.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
