package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"rba/src/db"
	"rba/src/lib"
	"rba/src/middlewares"
	"rba/src/models"
	"rba/src/models/scopes"
	"rba/src/notifications"
	"rba/src/types"
	"rba/src/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const publicRoomsCacheKey = "rooms:public"

func roomHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	adminOnly := middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_SUPER_ADMIN)
	g.
		GET("/rooms", func(ctx *gin.Context) {
			var filters types.RoomQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			isAdmin := utils.IsAdminRole(role)
			unfiltered := filters.Capacity == 0 && filters.Location == "" && filters.Features == "" && filters.Page <= 1

			// The anonymous unfiltered listing is the hot path; serve it from
			// the cache when possible.
			if !isAdmin && unfiltered {
				if cached := lib.CacheGetJSON(publicRoomsCacheKey); cached != "" {
					var data map[string]any
					if err := json.Unmarshal([]byte(cached), &data); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
						return
					}
				}
			}

			db := db.GetDb()
			now := time.Now().Unix()
			filtered := func(q *gorm.DB) *gorm.DB {
				if !isAdmin {
					q = q.Scopes(scopes.BookableRooms(now))
				}
				if filters.Capacity > 0 {
					q = q.Where("capacity >= ?", filters.Capacity)
				}
				if filters.Location != "" {
					q = q.Where("location LIKE ?", "%"+filters.Location+"%")
				}
				if filters.Features != "" {
					for _, feature := range splitCSV(filters.Features) {
						q = q.Where("features LIKE ?", "%"+feature+"%")
					}
				}
				return q
			}

			var total int64
			if err := filtered(db.Model(&models.Room{})).Count(&total).Error; err != nil {
				log.Printf("Error fetching rooms: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			var rooms []models.Room
			err := filtered(db.Model(&models.Room{})).
				Scopes(scopes.Paginate(filters.Page, filters.Limit)).
				Order("name").
				Find(&rooms).
				Error
			if err != nil {
				log.Printf("Error fetching rooms: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			data := gin.H{
				"data":       rooms,
				"total":      total,
				"page":       filters.Page,
				"limit":      filters.Limit,
				"totalPages": utils.TotalPages(total, filters.Limit),
			}
			if !isAdmin && unfiltered {
				lib.CacheSetJSON(publicRoomsCacheKey, data)
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
		}).
		GET("/rooms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.Room{}).Where("id = ?", params.ID)
			if !utils.IsAdminRole(ctx.GetString("role")) {
				q = q.Scopes(scopes.BookableRooms(time.Now().Unix()))
			}
			var room models.Room
			if err := q.First(&room).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Room not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"room": room}})
		}).
		POST("/rooms", middlewares.AuthMiddleware, adminOnly, func(ctx *gin.Context) {
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
				return
			}
			room := models.Room{
				Name:            body.Name,
				Slug:            slug.Make(body.Name),
				Capacity:        body.Capacity,
				Location:        body.Location,
				Features:        types.StringList(body.Features),
				AutoApprove:     body.AutoApprove,
				RestrictedHours: body.RestrictedHours,
			}
			db := db.GetDb()
			if err := db.Create(&room).Error; err != nil {
				log.Printf("Error adding room: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add room"})
				return
			}
			lib.CacheInvalidate(publicRoomsCacheKey)
			go notifications.Send(middlewares.CurrentUserID(ctx),
				fmt.Sprintf("Room %q has been created.", room.Name),
				notifications.KindRoomCreated)
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
				"message": "Room added successfully",
				"room":    room,
			}})
		}).
		PUT("/rooms/:id", middlewares.AuthMiddleware, adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			var body types.UpdateRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if body.Empty() {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "At least one field is required"})
				return
			}
			db := db.GetDb()
			var room models.Room
			if err := db.Model(&models.Room{}).Where("id = ?", params.ID).First(&room).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Room not found"})
				return
			}
			patch := map[string]any{}
			if body.Name != nil {
				patch["name"] = *body.Name
				patch["slug"] = slug.Make(*body.Name)
			}
			if body.Capacity != nil {
				patch["capacity"] = *body.Capacity
			}
			if body.Location != nil {
				patch["location"] = *body.Location
			}
			if body.Features != nil {
				patch["features"] = types.StringList(body.Features)
			}
			if body.AutoApprove != nil {
				patch["auto_approve"] = *body.AutoApprove
			}
			if body.RestrictedHours != nil {
				patch["restricted_hours"] = *body.RestrictedHours
			}
			if err := db.Model(&models.Room{}).Where("id = ?", params.ID).Updates(patch).Error; err != nil {
				log.Printf("Error updating room: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update room"})
				return
			}
			if err := db.Model(&models.Room{}).Where("id = ?", params.ID).First(&room).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update room"})
				return
			}
			lib.CacheInvalidate(publicRoomsCacheKey)
			go notifications.Send(middlewares.CurrentUserID(ctx),
				fmt.Sprintf("Room %q has been updated.", room.Name),
				notifications.KindRoomUpdated)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message": "Room updated successfully",
				"room":    room,
			}})
		}).
		DELETE("/rooms/:id", middlewares.AuthMiddleware, adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			var room models.Room
			if err := db.Model(&models.Room{}).Where("id = ?", params.ID).First(&room).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Room not found"})
				return
			}
			// A room with an approved booking still ahead of it cannot go away.
			var active int64
			err := db.
				Model(&models.Booking{}).
				Where("room_id = ?", room.ID).
				Scopes(scopes.WithApprovedStatus).
				Where("end_time > ?", time.Now().Unix()).
				Count(&active).
				Error
			if err != nil {
				log.Printf("Error deleting room: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete room"})
				return
			}
			if active > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Room has approved bookings that have not ended"})
				return
			}
			if err := db.Delete(&models.Room{}, "id = ?", room.ID).Error; err != nil {
				log.Printf("Error deleting room: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete room"})
				return
			}
			lib.CacheInvalidate(publicRoomsCacheKey)
			go notifications.Send(middlewares.CurrentUserID(ctx),
				fmt.Sprintf("Room %q has been deleted.", room.Name),
				notifications.KindRoomDeleted)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "Room deleted successfully"}})
		}).
		POST("/rooms/:id/suspend", middlewares.AuthMiddleware, adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			var body types.SuspendRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Room ID and valid days are required"})
				return
			}
			db := db.GetDb()
			var room models.Room
			if err := db.Model(&models.Room{}).Where("id = ?", params.ID).First(&room).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Room not found"})
				return
			}
			suspendedUntil := time.Now().Unix() + int64(body.Days)*24*60*60
			err := db.
				Model(&models.Room{}).
				Where("id = ?", room.ID).
				Update("suspended_until", suspendedUntil).
				Error
			if err != nil {
				log.Printf("Error suspending room: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to suspend room"})
				return
			}
			room.SuspendedUntil = &suspendedUntil
			lib.CacheInvalidate(publicRoomsCacheKey)
			go notifications.Send(middlewares.CurrentUserID(ctx),
				fmt.Sprintf("Room %q has been suspended for %d days.", room.Name, body.Days),
				notifications.KindRoomModified)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message": fmt.Sprintf("Room suspended for %d days", body.Days),
				"room":    room,
			}})
		})
	return g
}

// splitCSV trims the pieces of a comma separated query value, dropping
// empty entries.
func splitCSV(value string) []string {
	var out []string
	for _, piece := range strings.Split(value, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
