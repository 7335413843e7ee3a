package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/utils"
)

// ComplaintController handles student complaints and the manager's triage
// actions on them.
type ComplaintController struct {
	db *gorm.DB
}

// NewComplaintController creates a ComplaintController.
func NewComplaintController(db *gorm.DB) *ComplaintController {
	return &ComplaintController{db: db}
}

// Create files a new complaint. Anonymous complaints drop the author link
// before persisting, so the record carries no identity at all.
func (c *ComplaintController) Create(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Category    string `json:"category" binding:"required,max=32"`
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description" binding:"required"`
		IsAnonymous bool   `json:"is_anonymous"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	complaint := models.Complaint{
		Category:    utils.SanitizeText(strings.TrimSpace(req.Category)),
		Title:       utils.SanitizeText(strings.TrimSpace(req.Title)),
		Description: utils.SanitizeText(strings.TrimSpace(req.Description)),
		IsAnonymous: req.IsAnonymous,
		Status:      models.ComplaintOpen,
	}
	if !req.IsAnonymous {
		complaint.UserID = &userID
	}

	if err := c.db.Create(&complaint).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create complaint")
		return
	}

	utils.Success(ctx, complaint)
}

// List returns complaints, newest first. Managers and admins see everything;
// students see only their own non-anonymous filings.
func (c *ComplaintController) List(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := c.db.Model(&models.Complaint{})
	role := ctx.GetString(middleware.ContextRoleKey)
	if role != models.RoleMessManager && role != models.RoleAdmin {
		query = query.Where("user_id = ?", userID)
	}
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		if !models.ValidComplaintStatus(status) {
			utils.Error(ctx, http.StatusBadRequest, 40051, "invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count complaints")
		return
	}

	var complaints []models.Complaint
	if err := query.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&complaints).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list complaints")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      complaints,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// UpdateStatus moves a complaint through its lifecycle and optionally records
// the manager's response.
func (c *ComplaintController) UpdateStatus(ctx *gin.Context) {
	complaintID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || complaintID <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid complaint id")
		return
	}

	var req struct {
		Status   string `json:"status" binding:"required"`
		Response string `json:"response"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid request payload")
		return
	}
	if !models.ValidComplaintStatus(req.Status) {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid status")
		return
	}

	var complaint models.Complaint
	if err := c.db.First(&complaint, complaintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "complaint not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load complaint")
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if resp := utils.SanitizeText(strings.TrimSpace(req.Response)); resp != "" {
		updates["response"] = resp
	}
	if err := c.db.Model(&complaint).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to update complaint")
		return
	}

	utils.Success(ctx, complaint)
}
