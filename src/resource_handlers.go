package main

import (
	"fmt"
	"log"
	"net/http"
	"rba/src/db"
	"rba/src/middlewares"
	"rba/src/models"
	"rba/src/models/scopes"
	"rba/src/notifications"
	"rba/src/types"
	"rba/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func resourceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	adminOnly := middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_SUPER_ADMIN)
	g.
		GET("/resources", func(ctx *gin.Context) {
			var filters types.ResourceQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			filtered := func(q *gorm.DB) *gorm.DB {
				if filters.Name != "" {
					q = q.Where("name LIKE ?", "%"+filters.Name+"%")
				}
				if filters.Type != "" {
					q = q.Where("type = ?", filters.Type)
				}
				if filters.Available != nil {
					q = q.Where("available = ?", *filters.Available)
				}
				return q
			}
			var total int64
			if err := filtered(db.Model(&models.Resource{})).Count(&total).Error; err != nil {
				log.Printf("Error fetching resources: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			var resources []models.Resource
			err := filtered(db.Model(&models.Resource{})).
				Scopes(scopes.Paginate(filters.Page, filters.Limit)).
				Order("name").
				Find(&resources).
				Error
			if err != nil {
				log.Printf("Error fetching resources: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"data":       resources,
				"total":      total,
				"page":       filters.Page,
				"limit":      filters.Limit,
				"totalPages": utils.TotalPages(total, filters.Limit),
			}})
		}).
		GET("/resources/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			var resource models.Resource
			if err := db.Model(&models.Resource{}).Where("id = ?", params.ID).First(&resource).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Resource not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"resource": resource}})
		}).
		POST("/resources", adminOnly, func(ctx *gin.Context) {
			var body types.CreateResourceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
				return
			}
			resource := models.Resource{
				Name:      body.Name,
				Type:      body.Type,
				Available: true,
			}
			if body.Available != nil {
				resource.Available = *body.Available
			}
			db := db.GetDb()
			if err := db.Create(&resource).Error; err != nil {
				log.Printf("Error adding resource: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add resource"})
				return
			}
			go notifications.NotifyAdmins(
				fmt.Sprintf("Resource %q has been added.", resource.Name),
				notifications.KindRoomModified)
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
				"message":  "Resource added successfully",
				"resource": resource,
			}})
		}).
		PUT("/resources/:id", adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			var body types.UpdateResourceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if body.Empty() {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "At least one field is required"})
				return
			}
			db := db.GetDb()
			var resource models.Resource
			if err := db.Model(&models.Resource{}).Where("id = ?", params.ID).First(&resource).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Resource not found"})
				return
			}
			patch := map[string]any{}
			if body.Name != nil {
				patch["name"] = *body.Name
			}
			if body.Type != nil {
				patch["type"] = *body.Type
			}
			if body.Available != nil {
				patch["available"] = *body.Available
			}
			if err := db.Model(&models.Resource{}).Where("id = ?", params.ID).Updates(patch).Error; err != nil {
				log.Printf("Error updating resource: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update resource"})
				return
			}
			if err := db.Model(&models.Resource{}).Where("id = ?", params.ID).First(&resource).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update resource"})
				return
			}
			go notifications.NotifyAdmins(
				fmt.Sprintf("Resource %q has been updated.", resource.Name),
				notifications.KindRoomModified)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message":  "Resource updated successfully",
				"resource": resource,
			}})
		}).
		DELETE("/resources/:id", adminOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			db := db.GetDb()
			var resource models.Resource
			if err := db.Model(&models.Resource{}).Where("id = ?", params.ID).First(&resource).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Resource not found"})
				return
			}
			var active int64
			err := db.
				Model(&models.Booking{}).
				Joins("JOIN booking_resources ON booking_resources.booking_id = bookings.id").
				Where("booking_resources.resource_id = ?", resource.ID).
				Scopes(scopes.WithApprovedStatus).
				Where("end_time > ?", time.Now().Unix()).
				Count(&active).
				Error
			if err != nil {
				log.Printf("Error deleting resource: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete resource"})
				return
			}
			if active > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Resource is attached to approved bookings that have not ended"})
				return
			}
			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.BookingResource{}, "resource_id = ?", resource.ID).Error; err != nil {
					return err
				}
				return tx.Delete(&models.Resource{}, "id = ?", resource.ID).Error
			})
			if err != nil {
				log.Printf("Error deleting resource: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete resource"})
				return
			}
			go notifications.NotifyAdmins(
				fmt.Sprintf("Resource %q has been deleted.", resource.Name),
				notifications.KindRoomModified)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "Resource deleted successfully"}})
		})
	return g
}
