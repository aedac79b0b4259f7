package scopes

import "gorm.io/gorm"

func WithApprovedStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "APPROVED")
}

// OverlappingRange matches bookings whose [start_time, end_time) interval
// intersects [start, end) under closed-open semantics. Touching boundaries
// do not match.
func OverlappingRange(start, end int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("start_time < ? AND end_time > ?", end, start)
	}
}

// BookableRooms filters out rooms whose suspension window has not yet
// expired. Admin queries skip this scope.
func BookableRooms(now int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("suspended_until IS NULL OR suspended_until <= ?", now)
	}
}

func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
