package utils

import (
	"rba/src/models"
	"rba/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).Unix()
	hour := int64(60 * 60)

	t.Run("identical ranges overlap", func(t *testing.T) {
		assert.True(t, Overlaps(base, base+hour, base, base+hour))
	})
	t.Run("partial overlap at the tail", func(t *testing.T) {
		// [09:00, 10:30) vs [10:00, 11:00)
		assert.True(t, Overlaps(base, base+hour+hour/2, base+hour, base+2*hour))
	})
	t.Run("contained range overlaps", func(t *testing.T) {
		// [10:30, 10:45) inside [10:00, 11:00)
		assert.True(t, Overlaps(base+hour+hour/2, base+hour+3*hour/4, base+hour, base+2*hour))
	})
	t.Run("touching bookings do not overlap", func(t *testing.T) {
		// [09:00, 10:00) then [10:00, 11:00)
		assert.False(t, Overlaps(base, base+hour, base+hour, base+2*hour))
		assert.False(t, Overlaps(base+hour, base+2*hour, base, base+hour))
	})
	t.Run("disjoint ranges do not overlap", func(t *testing.T) {
		assert.False(t, Overlaps(base, base+hour, base+3*hour, base+4*hour))
	})
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to types.BookingStatus
		allowed  bool
	}{
		{types.BOOKING_PENDING, types.BOOKING_APPROVED, true},
		{types.BOOKING_PENDING, types.BOOKING_REJECTED, true},
		{types.BOOKING_PENDING, types.BOOKING_CANCELLED, false},
		{types.BOOKING_APPROVED, types.BOOKING_CANCELLED, true},
		{types.BOOKING_APPROVED, types.BOOKING_PENDING, false},
		{types.BOOKING_APPROVED, types.BOOKING_REJECTED, false},
		{types.BOOKING_REJECTED, types.BOOKING_PENDING, false},
		{types.BOOKING_REJECTED, types.BOOKING_APPROVED, false},
		{types.BOOKING_CANCELLED, types.BOOKING_PENDING, false},
		{types.BOOKING_CANCELLED, types.BOOKING_APPROVED, false},
		{types.BOOKING_PENDING, types.BOOKING_PENDING, true},
		{types.BOOKING_CANCELLED, types.BOOKING_CANCELLED, true},
	}
	for _, c := range cases {
		assert.Equalf(t, c.allowed, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestRoomBookable(t *testing.T) {
	now := time.Now().Unix()

	t.Run("no suspension", func(t *testing.T) {
		room := models.Room{}
		assert.True(t, RoomBookable(&room, now))
	})
	t.Run("active suspension", func(t *testing.T) {
		until := now + 24*60*60
		room := models.Room{SuspendedUntil: &until}
		assert.False(t, RoomBookable(&room, now))
	})
	t.Run("expired suspension", func(t *testing.T) {
		until := now - 1
		room := models.Room{SuspendedUntil: &until}
		assert.True(t, RoomBookable(&room, now))
	})
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2026-03-02")
	assert.Nil(t, err)
	assert.Equal(t, int64(24*60*60-1), end-start)

	day := time.Unix(start, 0)
	assert.Equal(t, 2026, day.Year())
	assert.Equal(t, time.March, day.Month())
	assert.Equal(t, 2, day.Day())
	assert.Equal(t, 0, day.Hour())

	_, _, err = DayBounds("03/02/2026")
	assert.NotNil(t, err)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(100, 0))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
}

func TestGenerateResetToken(t *testing.T) {
	a, err := GenerateResetToken()
	assert.Nil(t, err)
	assert.Len(t, a, 64)

	b, err := GenerateResetToken()
	assert.Nil(t, err)
	assert.NotEqual(t, a, b)
}
