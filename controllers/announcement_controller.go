package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/utils"
)

// Announcement priorities.
const (
	priorityNormal = "NORMAL"
	priorityHigh   = "HIGH"
	priorityUrgent = "URGENT"
)

// AnnouncementController publishes and lists mess-wide notices.
type AnnouncementController struct {
	db *gorm.DB
}

// NewAnnouncementController creates an AnnouncementController.
func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{db: db}
}

// Create publishes an announcement. Content allows basic formatting and is
// sanitized; expiry is optional.
func (a *AnnouncementController) Create(ctx *gin.Context) {
	authorID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Title     string `json:"title" binding:"required,max=255"`
		Content   string `json:"content" binding:"required"`
		Priority  string `json:"priority"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	priority := strings.ToUpper(strings.TrimSpace(req.Priority))
	switch priority {
	case "":
		priority = priorityNormal
	case priorityNormal, priorityHigh, priorityUrgent:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid priority")
		return
	}

	var expiresAt *time.Time
	if raw := strings.TrimSpace(req.ExpiresAt); raw != "" {
		parsed, err := time.ParseInLocation(time.RFC3339, raw, time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40072, "invalid expires_at, expected RFC3339")
			return
		}
		expiresAt = &parsed
	}

	ann := models.Announcement{
		Title:     utils.SanitizeText(strings.TrimSpace(req.Title)),
		Content:   utils.Sanitize(req.Content),
		Priority:  priority,
		ExpiresAt: expiresAt,
		AuthorID:  authorID,
	}
	if err := a.db.Create(&ann).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to create announcement")
		return
	}

	utils.Success(ctx, ann)
}

// List returns announcements that have not expired, newest first.
func (a *AnnouncementController) List(ctx *gin.Context) {
	var anns []models.Announcement
	err := a.db.Preload("Author").
		Where("expires_at IS NULL OR expires_at >= ?", time.Now()).
		Order("created_at DESC").
		Find(&anns).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to list announcements")
		return
	}
	utils.Success(ctx, anns)
}

// Delete removes an announcement.
func (a *AnnouncementController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	res := a.db.Delete(&models.Announcement{}, "id = ?", id)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to delete announcement")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40470, "announcement not found")
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}
