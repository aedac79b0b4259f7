package main

import (
	"log"
	"net/http"
	"rba/src/db"
	"rba/src/middlewares"
	"rba/src/models"
	"rba/src/models/scopes"
	"rba/src/types"
	"rba/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func reportHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/history", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var filters types.HistoryQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			filtered := func(q *gorm.DB) *gorm.DB {
				q = q.
					Joins("JOIN rooms ON rooms.id = bookings.room_id").
					Joins("JOIN users ON users.id = bookings.user_id")
				if filters.Date != "" {
					start, end, err := utils.DayBounds(filters.Date)
					if err == nil {
						q = q.Where("bookings.start_time BETWEEN ? AND ?", start, end)
					}
				}
				if filters.Room != "" {
					q = q.Where("rooms.name LIKE ?", "%"+filters.Room+"%")
				}
				if filters.User != "" {
					q = q.Where("users.name LIKE ? OR users.email LIKE ?",
						"%"+filters.User+"%", "%"+filters.User+"%")
				}
				return q
			}
			var total int64
			if err := filtered(db.Model(&models.Booking{})).Count(&total).Error; err != nil {
				log.Printf("Error fetching history: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			var bookings []models.Booking
			err := filtered(db.Model(&models.Booking{})).
				Preload("Room").
				Preload("User").
				Scopes(scopes.Paginate(filters.Page, filters.Limit)).
				Order("bookings.created_at DESC").
				Find(&bookings).
				Error
			if err != nil {
				log.Printf("Error fetching history: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			rows := make([]gin.H, 0, len(bookings))
			for i := range bookings {
				rows = append(rows, bookingView(&bookings[i]))
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"data":       rows,
				"total":      total,
				"page":       filters.Page,
				"limit":      filters.Limit,
				"totalPages": utils.TotalPages(total, filters.Limit),
			}})
		}).
		GET("/report/bookings", middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_SUPER_ADMIN), func(ctx *gin.Context) {
			var filters types.ReportQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			filtered := func(q *gorm.DB) *gorm.DB {
				if filters.StartDate != "" {
					start, _, err := utils.DayBounds(filters.StartDate)
					if err == nil {
						q = q.Where("bookings.start_time >= ?", start)
					}
				}
				if filters.EndDate != "" {
					_, end, err := utils.DayBounds(filters.EndDate)
					if err == nil {
						q = q.Where("bookings.start_time <= ?", end)
					}
				}
				if filters.RoomName != "" {
					q = q.
						Joins("JOIN rooms ON rooms.id = bookings.room_id").
						Where("rooms.name LIKE ?", "%"+filters.RoomName+"%")
				}
				if filters.UserID != "" {
					q = q.Where("bookings.user_id = ?", filters.UserID)
				}
				if filters.Status != "" {
					q = q.Where("bookings.status = ?", filters.Status)
				}
				return q
			}
			var total int64
			if err := filtered(db.Model(&models.Booking{})).Count(&total).Error; err != nil {
				log.Printf("Error generating report: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			var bookings []models.Booking
			err := filtered(db.Model(&models.Booking{})).
				Preload("Room").
				Preload("User").
				Preload("Resources").
				Scopes(scopes.Paginate(filters.Page, filters.Limit)).
				Order("bookings.start_time").
				Find(&bookings).
				Error
			if err != nil {
				log.Printf("Error generating report: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			rows := make([]gin.H, 0, len(bookings))
			for i := range bookings {
				row := bookingView(&bookings[i])
				names := make([]string, 0, len(bookings[i].Resources))
				for _, r := range bookings[i].Resources {
					names = append(names, r.Name)
				}
				row["resources"] = names
				rows = append(rows, row)
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"data":       rows,
				"total":      total,
				"page":       filters.Page,
				"limit":      filters.Limit,
				"totalPages": utils.TotalPages(total, filters.Limit),
			}})
		})
	return g
}
