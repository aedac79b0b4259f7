package boot

import (
	"fmt"
	"log"
	"rba/src/db"
	"rba/src/lib"
	"rba/src/models"
	"rba/src/models/scopes"
	"rba/src/notifications"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Booking{},
		&models.RecurringBooking{},
		&models.Resource{},
		&models.BookingResource{},
		&models.Notification{},
		&models.NotificationConfig{},
		&models.PasswordResetToken{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(PurgeStaleResetTokens),
	)
	if err != nil {
		log.Printf("Error scheduling token purge: %s\n", err.Error())
		return
	}
	_, err = sched.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(SendUpcomingBookingReminders),
	)
	if err != nil {
		log.Printf("Error scheduling booking reminders: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// PurgeStaleResetTokens drops consumed and expired password reset tokens.
func PurgeStaleResetTokens() {
	db := db.GetDb()
	err := db.
		Where("used_at IS NOT NULL OR expires_at < ?", time.Now().Unix()).
		Delete(&models.PasswordResetToken{}).
		Error
	if err != nil {
		log.Printf("Error purging reset tokens: %s\n", err.Error())
	}
}

// SendUpcomingBookingReminders notifies owners of approved bookings starting
// within the next hour. Runs hourly so each booking lands in one window.
func SendUpcomingBookingReminders() {
	db := db.GetDb()
	now := time.Now().Unix()
	var bookings []models.Booking
	err := db.
		Model(&models.Booking{}).
		Scopes(scopes.WithApprovedStatus).
		Where("start_time BETWEEN ? AND ?", now, now+60*60).
		Preload("Room").
		Find(&bookings).
		Error
	if err != nil {
		log.Printf("Error fetching upcoming bookings: %s\n", err.Error())
		return
	}
	for _, b := range bookings {
		roomName := b.RoomID.String()
		if b.Room != nil {
			roomName = b.Room.Name
		}
		starts := time.Unix(b.StartTime, 0).Format("15:04")
		notifications.Send(b.UserID,
			fmt.Sprintf("Reminder: your booking for %s starts at %s.", roomName, starts),
			notifications.KindBookingReminder)
	}
}
