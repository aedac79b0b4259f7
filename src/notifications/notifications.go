// Package notifications is the outbound status-change dispatcher. Core
// handlers call Send and never learn whether delivery worked: failures are
// logged and swallowed, per-channel fan-out follows the user's
// NotificationConfig.
package notifications

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"rba/src/db"
	"rba/src/lib"
	awslib "rba/src/lib/aws"
	"rba/src/models"
	"rba/src/types"
	"strings"

	"github.com/google/uuid"
)

const (
	KindAccountSuspended       = "ACCOUNT_SUSPENDED"
	KindAccountReactivated     = "ACCOUNT_REACTIVATED"
	KindAccountModified        = "ACCOUNT_MODIFIED"
	KindAccountDeleted         = "ACCOUNT_DELETED"
	KindPasswordResetRequest   = "PASSWORD_RESET_REQUEST"
	KindPasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
	KindBookingRequest         = "BOOKING_REQUEST"
	KindBookingApproved        = "BOOKING_APPROVED"
	KindBookingRejected        = "BOOKING_REJECTED"
	KindBookingCancelled       = "BOOKING_CANCELLED"
	KindBookingPending         = "BOOKING_PENDING"
	KindBookingModified        = "BOOKING_MODIFIED"
	KindBookingReminder        = "BOOKING_REMINDER"
	KindNewBookingRequest      = "NEW_BOOKING_REQUEST"
	KindRoomCreated            = "ROOM_CREATED"
	KindRoomUpdated            = "ROOM_UPDATED"
	KindRoomDeleted            = "ROOM_DELETED"
	KindRoomModified           = "ROOM_MODIFIED"
)

// StatusKind maps a booking status to its notification kind.
func StatusKind(status types.BookingStatus) string {
	return "BOOKING_" + string(status)
}

// Send persists the notification and fans it out over the user's enabled
// channels. It never returns an error: delivery is fire and forget with no
// guarantees, and a missing config simply drops the message.
func Send(userID uuid.UUID, message string, kind string) {
	d := db.GetDb()
	var user models.User
	if err := d.Model(&models.User{}).Where("id = ?", userID).First(&user).Error; err != nil {
		log.Printf("Notification error: user %s: %s\n", userID, err.Error())
		return
	}
	var config models.NotificationConfig
	if err := d.Model(&models.NotificationConfig{}).Where("user_id = ?", userID).First(&config).Error; err != nil {
		log.Printf("Notification error: config for %s: %s\n", userID, err.Error())
		return
	}

	record := models.Notification{UserID: userID, Message: message, Type: kind}
	if err := d.Create(&record).Error; err != nil {
		log.Printf("Notification error: persisting for %s: %s\n", userID, err.Error())
	}

	if config.EmailEnabled {
		subject := fmt.Sprintf("Meeting Room: %s", strings.ReplaceAll(kind, "_", " "))
		if err := sendEmail(user.Email, subject, message); err != nil {
			log.Printf("Notification error: email to %s: %s\n", user.Email, err.Error())
		}
	}
	if config.SMSEnabled {
		if user.PhoneNumber == nil {
			log.Printf("SMS notification not sent for user %s: phoneNumber is missing\n", userID)
		} else if err := awslib.SNSPublishSMS(*user.PhoneNumber, message); err != nil {
			log.Printf("Notification error: SMS for %s: %s\n", userID, err.Error())
		}
	}
	if config.TelegramEnabled && config.TelegramChatID != nil {
		if err := lib.TelegramSendMessage(*config.TelegramChatID, message); err != nil {
			log.Printf("Notification error: telegram for %s: %s\n", userID, err.Error())
		}
	}
}

// NotifyAdmins fans a message out to every ADMIN and SUPER_ADMIN account.
func NotifyAdmins(message string, kind string) {
	d := db.GetDb()
	var adminIds []uuid.UUID
	err := d.
		Model(&models.User{}).
		Where("role IN (?)", []string{types.ROLE_ADMIN, types.ROLE_SUPER_ADMIN}).
		Pluck("id", &adminIds).
		Error
	if err != nil {
		log.Printf("Notification error: listing admins: %s\n", err.Error())
		return
	}
	for _, id := range adminIds {
		Send(id, message, kind)
	}
}

// sendEmail routes through the configured queue when one is set (Kafka on
// local environments, SQS otherwise) and falls back to a direct send (SES
// in AWS environments, SMTP elsewhere).
func sendEmail(to string, subject string, body string) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	apiEnv := os.Getenv("API_ENV")
	from := os.Getenv("MAIL_FROM")
	if emailQueue != "" {
		payload := map[string]any{
			"from":    from,
			"to":      []string{to},
			"subject": subject,
			"body":    body,
		}
		if apiEnv == "local" {
			if err := lib.KafkaProduceMessage("emails", emailQueue, payload); err != nil {
				return fmt.Errorf("error sending message to queue: %s", err.Error())
			}
			return nil
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := awslib.SQSProduceMessage(emailQueue, string(raw)); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	}
	if apiEnv == "aws" {
		return awslib.SESSendMessage(from, []string{to}, subject, body)
	}
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: "Room Booking",
		To:       []string{to},
		Subject:  subject,
		Body:     body,
	})
}
