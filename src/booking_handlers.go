package main

import (
	"errors"
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
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errBookingConflict = errors.New("room is already booked for the requested time")

func bookingView(b *models.Booking) gin.H {
	view := gin.H{
		"id":        b.ID,
		"userId":    b.UserID,
		"roomId":    b.RoomID,
		"startTime": b.StartTime,
		"endTime":   b.EndTime,
		"status":    b.Status,
		"equipment": b.Equipment,
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
	}
	if b.User != nil {
		view["userName"] = b.User.Name
	}
	if b.Room != nil {
		view["roomName"] = b.Room.Name
	}
	if b.Purpose != nil {
		view["purpose"] = *b.Purpose
	}
	if b.Recurring != nil {
		view["recurring"] = b.Recurring
	}
	return view
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			var filters types.BookingQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			if filters.Date != "" {
				if _, _, err := utils.DayBounds(filters.Date); err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid date filter"})
					return
				}
			}
			db := db.GetDb()
			filtered := func(q *gorm.DB) *gorm.DB {
				if filters.Date != "" {
					startOfDay, endOfDay, _ := utils.DayBounds(filters.Date)
					q = q.Where("start_time >= ? AND end_time <= ?", startOfDay, endOfDay)
				}
				if filters.RoomID != "" {
					q = q.Where("room_id = ?", filters.RoomID)
				}
				if filters.Status != "" {
					q = q.Where("status = ?", filters.Status)
				}
				// Non-admins only ever see their own bookings regardless of
				// the userId filter they pass.
				if !utils.IsAdminRole(role) {
					q = q.Where("user_id = ?", ctx.GetString("id"))
				} else if filters.UserID != "" {
					q = q.Where("user_id = ?", filters.UserID)
				}
				return q
			}

			var total int64
			if err := filtered(db.Model(&models.Booking{})).Count(&total).Error; err != nil {
				log.Printf("Error fetching bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch bookings"})
				return
			}
			var bookings []models.Booking
			err := filtered(db.Model(&models.Booking{})).
				Preload("Room").
				Preload("User").
				Scopes(scopes.Paginate(filters.Page, filters.Limit)).
				Order("start_time").
				Find(&bookings).
				Error
			if err != nil {
				log.Printf("Error fetching bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch bookings"})
				return
			}
			views := make([]gin.H, 0, len(bookings))
			for i := range bookings {
				views = append(views, bookingView(&bookings[i]))
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"data":       views,
				"total":      total,
				"page":       filters.Page,
				"limit":      filters.Limit,
				"totalPages": utils.TotalPages(total, filters.Limit),
			}})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			db := db.GetDb()
			q := db.Model(&models.Booking{}).Where("id = ?", params.ID)
			if !utils.IsAdminRole(role) {
				q = q.Where("user_id = ?", ctx.GetString("id"))
			}
			var booking models.Booking
			err := q.
				Preload("Room").
				Preload("User").
				Preload("Recurring").
				First(&booking).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"booking": bookingView(&booking)}})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
				return
			}
			if body.EndTime <= body.StartTime {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "End time must be after start time"})
				return
			}
			uid := middlewares.CurrentUserID(ctx)
			role := ctx.GetString("role")
			roomID := uuid.MustParse(body.RoomID)

			var room models.Room
			booking := models.Booking{
				RoomID:    roomID,
				UserID:    uid,
				StartTime: body.StartTime,
				EndTime:   body.EndTime,
				Equipment: types.StringList(body.Equipment),
				Purpose:   body.Purpose,
			}
			db := db.GetDb()
			// The room row lock serializes concurrent creates per room so the
			// conflict check and the insert commit as one unit.
			err := db.Transaction(func(tx *gorm.DB) error {
				err := tx.
					Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("id = ?", roomID).
					First(&room).
					Error
				if err != nil {
					return err
				}
				if !utils.RoomBookable(&room, time.Now().Unix()) {
					return fmt.Errorf("room %q is suspended", room.Name)
				}
				conflict, err := utils.HasBookingConflict(tx, roomID, body.StartTime, body.EndTime, nil)
				if err != nil {
					return err
				}
				if conflict {
					return errBookingConflict
				}
				if room.AutoApprove {
					booking.Status = types.BOOKING_APPROVED
				} else {
					booking.Status = types.BOOKING_PENDING
				}
				if err := tx.Create(&booking).Error; err != nil {
					return err
				}
				if body.Recurring != nil {
					recurring := models.RecurringBooking{
						BookingID: booking.ID,
						Pattern:   body.Recurring.Pattern,
						StartDate: body.Recurring.StartDate,
						EndDate:   body.Recurring.EndDate,
					}
					if err := tx.Create(&recurring).Error; err != nil {
						return err
					}
					booking.Recurring = &recurring
				}
				if len(body.Resources) > 0 {
					var available int64
					err := tx.
						Model(&models.Resource{}).
						Where("id IN (?) AND available = ?", body.Resources, true).
						Count(&available).
						Error
					if err != nil {
						return err
					}
					if available != int64(len(body.Resources)) {
						return errors.New("one or more requested resources are unavailable")
					}
					for _, rid := range body.Resources {
						br := models.BookingResource{BookingID: booking.ID, ResourceID: uuid.MustParse(rid)}
						if err := tx.Create(&br).Error; err != nil {
							return err
						}
					}
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Invalid room selected"})
					return
				}
				if errors.Is(err, errBookingConflict) {
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Room is already booked for the requested time"})
					return
				}
				log.Printf("Error creating booking: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}

			verb := "requested"
			kind := notifications.KindBookingRequest
			if booking.Status == types.BOOKING_APPROVED {
				verb = "created"
				kind = notifications.KindBookingApproved
			}
			go notifications.Send(uid, fmt.Sprintf("Booking for room %q has been %s.", room.Name, verb), kind)
			if role == types.ROLE_STAFF && booking.Status == types.BOOKING_PENDING {
				msg := fmt.Sprintf(
					"Staff member %q has requested a booking for room %q from %s to %s.",
					ctx.GetString("email"), room.Name,
					time.Unix(body.StartTime, 0).Format(time.RFC1123),
					time.Unix(body.EndTime, 0).Format(time.RFC1123),
				)
				go notifications.NotifyAdmins(msg, notifications.KindNewBookingRequest)
			}

			booking.Room = &room
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
				"message": fmt.Sprintf("Booking %s successfully", verb),
				"booking": bookingView(&booking),
			}})
		}).
		PUT("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			var body types.UpdateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			if body.Empty() {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "At least one field is required"})
				return
			}
			role := ctx.GetString("role")
			isAdmin := utils.IsAdminRole(role)
			if body.Status != nil && !isAdmin {
				ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Only admins can update booking status"})
				return
			}

			bookingID := uuid.MustParse(params.ID)
			var booking models.Booking
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				q := tx.Model(&models.Booking{}).Where("id = ?", bookingID)
				if !isAdmin {
					q = q.Where("user_id = ?", ctx.GetString("id"))
				}
				if err := q.First(&booking).Error; err != nil {
					return err
				}

				newStart := booking.StartTime
				newEnd := booking.EndTime
				if body.StartTime != nil {
					newStart = *body.StartTime
				}
				if body.EndTime != nil {
					newEnd = *body.EndTime
				}
				if newEnd <= newStart {
					return errors.New("end time must be after start time")
				}
				if body.Status != nil && !utils.CanTransition(booking.Status, *body.Status) {
					return fmt.Errorf("booking status cannot change from %s to %s", booking.Status, *body.Status)
				}

				// Re-check conflicts whenever the committed state would be an
				// APPROVED booking with a changed or newly approved range. The
				// approval path re-checks even without a time change, so a
				// PENDING request cannot be approved into an interval that was
				// taken since it was created.
				timesChanged := newStart != booking.StartTime || newEnd != booking.EndTime
				approving := body.Status != nil && *body.Status == types.BOOKING_APPROVED && booking.Status != types.BOOKING_APPROVED
				if (timesChanged && booking.Status == types.BOOKING_APPROVED) || approving {
					var room models.Room
					err := tx.
						Clauses(clause.Locking{Strength: "UPDATE"}).
						Where("id = ?", booking.RoomID).
						First(&room).
						Error
					if err != nil {
						return err
					}
					conflict, err := utils.HasBookingConflict(tx, booking.RoomID, newStart, newEnd, &booking.ID)
					if err != nil {
						return err
					}
					if conflict {
						return errBookingConflict
					}
				}

				patch := map[string]any{
					"start_time": newStart,
					"end_time":   newEnd,
				}
				if body.Equipment != nil {
					patch["equipment"] = types.StringList(body.Equipment)
				}
				if body.Purpose != nil {
					patch["purpose"] = *body.Purpose
				}
				if body.Status != nil {
					patch["status"] = *body.Status
				}
				if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).Updates(patch).Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Booking{}).
					Where("id = ?", bookingID).
					Preload("Room").
					Preload("User").
					First(&booking).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Booking not found or unauthorized"})
					return
				}
				if errors.Is(err, errBookingConflict) {
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Room is already booked for the requested time"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}

			kind := notifications.KindBookingModified
			message := fmt.Sprintf("Booking for room %q has been updated.", roomNameOf(&booking))
			if body.Status != nil {
				kind = notifications.StatusKind(*body.Status)
				message = fmt.Sprintf("Booking for room %q is now %s.", roomNameOf(&booking), *body.Status)
			}
			go notifications.Send(booking.UserID, message, kind)

			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
				"message": "Booking updated successfully",
				"booking": bookingView(&booking),
			}})
		}).
		DELETE("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
				return
			}
			role := ctx.GetString("role")
			db := db.GetDb()
			q := db.Model(&models.Booking{}).Where("id = ?", params.ID)
			if !utils.IsAdminRole(role) {
				q = q.Where("user_id = ?", ctx.GetString("id"))
			}
			var booking models.Booking
			if err := q.Preload("Room").First(&booking).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Booking not found or unauthorized"})
				return
			}
			// Hard delete, no soft-cancel retention.
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.BookingResource{}).Error; err != nil {
					return err
				}
				if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.RecurringBooking{}).Error; err != nil {
					return err
				}
				return tx.Delete(&models.Booking{}, "id = ?", booking.ID).Error
			})
			if err != nil {
				log.Printf("Error cancelling booking: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to cancel booking"})
				return
			}
			go notifications.Send(booking.UserID,
				fmt.Sprintf("Booking for room %q has been cancelled.", roomNameOf(&booking)),
				notifications.KindBookingCancelled)
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "Booking cancelled successfully"}})
		})
	return g
}

func roomNameOf(b *models.Booking) string {
	if b.Room != nil {
		return b.Room.Name
	}
	return b.RoomID.String()
}
