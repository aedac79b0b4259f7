package main

import (
	"log"
	"net/http"
	"rba/src/db"
	"rba/src/middlewares"
	"rba/src/models"
	"rba/src/notifications"
	"rba/src/types"

	"github.com/gin-gonic/gin"
)

func notificationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	superOnly := middlewares.RequireRoles(types.ROLE_SUPER_ADMIN)
	g.
		GET("/notifications", func(ctx *gin.Context) {
			db := db.GetDb()
			var feed []models.Notification
			err := db.
				Model(&models.Notification{}).
				Where("user_id = ?", middlewares.CurrentUserID(ctx)).
				Order("created_at DESC").
				Find(&feed).
				Error
			if err != nil {
				log.Printf("Error fetching notifications: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"notifications": feed}})
		}).
		GET("/notifications/config", func(ctx *gin.Context) {
			db := db.GetDb()
			var config models.NotificationConfig
			err := db.
				Model(&models.NotificationConfig{}).
				Where("user_id = ?", middlewares.CurrentUserID(ctx)).
				First(&config).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Notification config not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"config": config}})
		}).
		PUT("/notifications/config", superOnly, func(ctx *gin.Context) {
			var body types.UpdateNotificationConfigBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A valid user id is required"})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.Model(&models.User{}).Where("id = ?", body.UserID).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
				return
			}
			var config models.NotificationConfig
			err := db.
				Model(&models.NotificationConfig{}).
				Where("user_id = ?", user.ID).
				First(&config).
				Error
			if err != nil {
				config = models.NotificationConfig{UserID: user.ID, EmailEnabled: true}
			}
			if body.EmailEnabled != nil {
				config.EmailEnabled = *body.EmailEnabled
			}
			if body.SMSEnabled != nil {
				config.SMSEnabled = *body.SMSEnabled
			}
			if body.TelegramEnabled != nil {
				config.TelegramEnabled = *body.TelegramEnabled
			}
			if body.TelegramChatID != nil {
				config.TelegramChatID = body.TelegramChatID
			}
			if config.SMSEnabled && user.PhoneNumber == nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "SMS notifications require a phone number on file"})
				return
			}
			if config.TelegramEnabled && config.TelegramChatID == nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Telegram notifications require a chat id"})
				return
			}
			if err := db.Save(&config).Error; err != nil {
				log.Printf("Error updating notification config: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update notification config"})
				return
			}
			go notifications.Send(user.ID, "Your notification preferences have been updated.", notifications.KindAccountModified)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message": "Notification config updated successfully",
				"config":  config,
			}})
		})
	return g
}
