package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/services"
	"github.com/hosteldesk/messmate/utils"
)

// AttendanceController exposes the meal attendance toggle and the manager
// headcount view. All settlement rules live in the attendance service.
type AttendanceController struct {
	attendance *services.AttendanceService
}

// NewAttendanceController creates an AttendanceController.
func NewAttendanceController(attendance *services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendance: attendance}
}

// Toggle records the caller's opt-in/opt-out decision for today's meal.
func (c *AttendanceController) Toggle(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		MenuID   uint   `json:"menu_id" binding:"required"`
		MealType string `json:"meal_type" binding:"required"`
		OptedIn  *bool  `json:"opted_in" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	meal, ok := models.ParseMealType(req.MealType)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid meal type")
		return
	}

	rec, err := c.attendance.SetAttendance(userID, meal, req.MenuID, *req.OptedIn, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCutoffPassed):
			utils.Error(ctx, http.StatusConflict, 40930, err.Error())
		case errors.Is(err, services.ErrMenuNotFound):
			utils.Error(ctx, http.StatusNotFound, 40430, err.Error())
		case errors.Is(err, services.ErrInvalidMealType):
			utils.Error(ctx, http.StatusBadRequest, 40031, err.Error())
		default:
			utils.Sugar.Errorw("attendance toggle failed", "user_id", userID, "meal", meal, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to update attendance")
		}
		return
	}

	utils.Success(ctx, rec)
}

// MyToday returns the caller's attendance records for today.
func (c *AttendanceController) MyToday(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	recs, err := c.attendance.GetForDate(userID, time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load attendance")
		return
	}
	utils.Success(ctx, recs)
}

// ListForDate returns all attendance records for a date (today when omitted)
// with student info, for the mess manager's headcount.
func (c *AttendanceController) ListForDate(ctx *gin.Context) {
	day := time.Now()
	if raw := strings.TrimSpace(ctx.Query("date")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	recs, err := c.attendance.ListForDate(day)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list attendance")
		return
	}
	utils.Success(ctx, recs)
}
