package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/services"
	"github.com/hosteldesk/messmate/utils"
)

const dateLayout = "2006-01-02"

// MenuController manages the published menu catalog.
type MenuController struct {
	db *gorm.DB
}

// NewMenuController creates a MenuController.
func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{db: db}
}

// UpsertMenu creates or replaces the menu for one (date, meal) slot. The
// unique index on (date, meal_type) makes the write atomic under concurrent
// managers editing the same slot.
func (m *MenuController) UpsertMenu(ctx *gin.Context) {
	var req struct {
		Date        string   `json:"date" binding:"required"`
		MealType    string   `json:"meal_type" binding:"required"`
		Items       []string `json:"items" binding:"required,min=1"`
		SpecialItem string   `json:"special_item"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	meal, ok := models.ParseMealType(req.MealType)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid meal type")
		return
	}

	parsed, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid date, expected YYYY-MM-DD")
		return
	}
	day := services.MidnightOf(parsed)

	items := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if trimmed := utils.SanitizeText(strings.TrimSpace(it)); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "items cannot be empty")
		return
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to encode items")
		return
	}

	menu := models.Menu{
		Date:        day,
		MealType:    meal,
		Items:       string(itemsJSON),
		SpecialItem: utils.SanitizeText(strings.TrimSpace(req.SpecialItem)),
	}

	err = m.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "meal_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"items":        menu.Items,
			"special_item": menu.SpecialItem,
			"updated_at":   time.Now(),
		}),
	}).Create(&menu).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to save menu")
		return
	}

	// Reload to return the surviving row id on the update path.
	if err := m.db.Where("date = ? AND meal_type = ?", day, meal).Take(&menu).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load menu")
		return
	}

	utils.InvalidateByPrefix("cache:menus:" + day.Format(dateLayout))

	utils.Success(ctx, menu)
}

// ListMenus returns the menus for a date (today when omitted), served from
// cache when possible.
func (m *MenuController) ListMenus(ctx *gin.Context) {
	day := services.MidnightOf(time.Now())
	if raw := strings.TrimSpace(ctx.Query("date")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = services.MidnightOf(parsed)
	}

	cacheKey := "cache:menus:" + day.Format(dateLayout)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var menus []models.Menu
	if err := m.db.Where("date = ?", day).Order("meal_type ASC").Find(&menus).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list menus")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: menus}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, menus)
}
