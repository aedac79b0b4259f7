package main

import (
	"fmt"
	"log"
	"net/http"
	"rba/src/config"
	"rba/src/db"
	"rba/src/middlewares"
	"rba/src/models"
	"rba/src/notifications"
	"rba/src/types"
	"rba/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// canManage enforces the admin matrix: SUPER_ADMIN manages everyone, ADMIN
// manages STAFF accounts only.
func canManage(actorRole string, target *models.User) bool {
	if actorRole == types.ROLE_SUPER_ADMIN {
		return true
	}
	return actorRole == types.ROLE_ADMIN && target.Role == types.ROLE_STAFF
}

func accountHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	adminOnly := middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_SUPER_ADMIN)
	superOnly := middlewares.RequireRoles(types.ROLE_SUPER_ADMIN)
	g.
		PUT("/users/:id", adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if body.Empty() {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "At least one field is required"})
				return
			}
			role := ctx.GetString("role")
			db := db.GetDb()
			var user models.User
			if err := db.Model(&models.User{}).Where("id = ?", params.ID).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
				return
			}
			if !canManage(role, &user) {
				ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
				return
			}
			if body.Role != nil && role != types.ROLE_SUPER_ADMIN {
				ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Only super admins can change roles"})
				return
			}
			patch := map[string]any{}
			if body.Name != nil {
				patch["name"] = *body.Name
			}
			if body.Email != nil {
				var dup int64
				err := db.
					Model(&models.User{}).
					Where("email = ?", *body.Email).
					Where("id <> ?", user.ID).
					Count(&dup).
					Error
				if err != nil {
					log.Printf("Error updating user: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
					return
				}
				if dup > 0 {
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Email is already in use"})
					return
				}
				patch["email"] = *body.Email
			}
			if body.Role != nil {
				patch["role"] = *body.Role
			}
			if body.Suspended != nil {
				patch["is_suspended"] = *body.Suspended
			}
			if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(patch).Error; err != nil {
				log.Printf("Error updating user: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
				return
			}
			if err := db.Model(&models.User{}).Where("id = ?", user.ID).First(&user).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
				return
			}
			go notifications.Send(user.ID, "Your account details have been updated.", notifications.KindAccountModified)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message": "User updated successfully",
				"user":    user,
			}})
		}).
		PUT("/users/:id/suspend", adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			var body types.SuspendUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Suspended flag is required"})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.Model(&models.User{}).Where("id = ?", params.ID).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
				return
			}
			if !canManage(ctx.GetString("role"), &user) {
				ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
				return
			}
			err := db.
				Model(&models.User{}).
				Where("id = ?", user.ID).
				Update("is_suspended", *body.Suspended).
				Error
			if err != nil {
				log.Printf("Error suspending user: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to suspend user"})
				return
			}
			user.IsSuspended = *body.Suspended
			message := "Your account has been suspended."
			kind := notifications.KindAccountSuspended
			if !*body.Suspended {
				message = "Your account has been reactivated."
				kind = notifications.KindAccountReactivated
			}
			go notifications.Send(user.ID, message, kind)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message": "User updated successfully",
				"user":    user,
			}})
		}).
		DELETE("/users/:id", superOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if params.ID == ctx.GetString("id") {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot delete your own account"})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.Model(&models.User{}).Where("id = ?", params.ID).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
				return
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.Notification{}, "user_id = ?", user.ID).Error; err != nil {
					return err
				}
				if err := tx.Delete(&models.NotificationConfig{}, "user_id = ?", user.ID).Error; err != nil {
					return err
				}
				if err := tx.Delete(&models.PasswordResetToken{}, "user_id = ?", user.ID).Error; err != nil {
					return err
				}
				return tx.Delete(&models.User{}, "id = ?", user.ID).Error
			})
			if err != nil {
				log.Printf("Error deleting user: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
				return
			}
			go notifications.NotifyAdmins(
				fmt.Sprintf("Account %s has been deleted.", user.Email),
				notifications.KindAccountDeleted)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "User deleted successfully"}})
		}).
		POST("/users/password-reset", superOnly, func(ctx *gin.Context) {
			var body types.PasswordResetRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A valid email is required"})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.Model(&models.User{}).Where("email = ?", body.Email).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
				return
			}
			token, err := utils.GenerateResetToken()
			if err != nil {
				log.Printf("Error generating reset token: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue reset token"})
				return
			}
			record := models.PasswordResetToken{
				UserID:    user.ID,
				Token:     token,
				ExpiresAt: time.Now().Unix() + config.ResetTokenTTL,
			}
			if err := db.Create(&record).Error; err != nil {
				log.Printf("Error storing reset token: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue reset token"})
				return
			}
			go notifications.Send(user.ID,
				fmt.Sprintf("A password reset was requested for your account. Reset token: %s", token),
				notifications.KindPasswordResetRequest)
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
				"message": "Password reset issued",
			}})
		}).
		PUT("/users/password-reset", func(ctx *gin.Context) {
			var body types.PasswordResetConfirmBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Token and a password of at least 8 characters are required"})
				return
			}
			db := db.GetDb()
			var record models.PasswordResetToken
			if err := db.Model(&models.PasswordResetToken{}).Where("token = ?", body.Token).First(&record).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Invalid reset token"})
				return
			}
			if !record.Usable(time.Now().Unix()) {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Reset token has expired or was already used"})
				return
			}
			actorRole := ctx.GetString("role")
			if actorRole != types.ROLE_SUPER_ADMIN && ctx.GetString("id") != record.UserID.String() {
				ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Error hashing password: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to reset password"})
				return
			}
			// The hash swap and token consumption land together or not at all.
			now := time.Now().Unix()
			err = db.Transaction(func(tx *gorm.DB) error {
				err := tx.
					Model(&models.User{}).
					Where("id = ?", record.UserID).
					Update("password_hash", string(hash)).
					Error
				if err != nil {
					return err
				}
				return tx.
					Model(&models.PasswordResetToken{}).
					Where("id = ?", record.ID).
					Update("used_at", now).
					Error
			})
			if err != nil {
				log.Printf("Error resetting password: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to reset password"})
				return
			}
			go notifications.Send(record.UserID, "Your password has been reset.", notifications.KindPasswordResetCompleted)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "Password reset successfully"}})
		})
	return g
}
