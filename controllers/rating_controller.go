package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/services"
	"github.com/hosteldesk/messmate/utils"
)

// RatingController handles meal ratings and the per-user rating streak.
type RatingController struct {
	db *gorm.DB
}

// NewRatingController creates a RatingController.
func NewRatingController(db *gorm.DB) *RatingController {
	return &RatingController{db: db}
}

// Create records a 1-5 score for a published menu. The rating insert and the
// streak bump share a transaction so the counter never drifts from the rows.
func (r *RatingController) Create(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		MenuID  uint   `json:"menu_id" binding:"required"`
		Score   int    `json:"score" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"max=512"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	var menu models.Menu
	if err := r.db.First(&menu, req.MenuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "menu not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load menu")
		return
	}

	rating := models.Rating{
		UserID:  userID,
		MenuID:  req.MenuID,
		Score:   req.Score,
		Comment: utils.SanitizeText(strings.TrimSpace(req.Comment)),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Rating
		err := tx.Where("user_id = ? AND menu_id = ?", userID, req.MenuID).Take(&existing).Error
		if err == nil {
			// Re-rating replaces the score without touching the streak.
			rating.ID = existing.ID
			rating.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).Updates(map[string]interface{}{
				"score":   rating.Score,
				"comment": rating.Comment,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&rating).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("rating_streak", gorm.Expr("rating_streak + ?", 1)).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to save rating")
		return
	}

	utils.Success(ctx, rating)
}

// List returns recent ratings with their menu and author, default window of
// the last 7 days.
func (r *RatingController) List(ctx *gin.Context) {
	days := 7
	if raw := strings.TrimSpace(ctx.Query("days")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 90 {
			days = n
		}
	}

	since := services.MidnightOf(time.Now()).AddDate(0, 0, -days)

	var ratings []models.Rating
	if err := r.db.Preload("Menu").Preload("User").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to list ratings")
		return
	}

	utils.Success(ctx, ratings)
}
