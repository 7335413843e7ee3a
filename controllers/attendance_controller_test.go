package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/services"
	"github.com/hosteldesk/messmate/utils"
)

func setupAttendanceRouter(t *testing.T) (*gin.Engine, *gorm.DB, models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Menu{}, &models.MealAttendance{}, &models.CreditTransaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := models.User{Name: "Asha", Email: "asha@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	credits := services.NewCreditService(db)
	ctrl := NewAttendanceController(services.NewAttendanceService(db, credits))

	r := gin.New()
	// Stand-in for AuthRequired so handlers see a resolved identity.
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, user.ID)
		ctx.Set(middleware.ContextRoleKey, models.RoleStudent)
		ctx.Next()
	})
	r.POST("/attendance", ctrl.Toggle)
	r.GET("/attendance/me", ctrl.MyToday)
	return r, db, user
}

func postToggle(t *testing.T, r *gin.Engine, menuID uint, meal string, optedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"menu_id":   menuID,
		"meal_type": meal,
		"opted_in":  optedIn,
	})
	req := httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestToggle_OptOutGrantsCredit(t *testing.T) {
	r, db, user := setupAttendanceRouter(t)

	day := services.MidnightOf(time.Now())
	menu := models.Menu{Date: day, MealType: models.MealDinner, Items: `["roti"]`}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	w := postToggle(t, r, menu.ID, "DINNER", false)

	if time.Now().Hour() >= services.CutoffHours[models.MealDinner] {
		if w.Code != http.StatusConflict {
			t.Fatalf("after cutoff want 409, got %d: %s", w.Code, w.Body.String())
		}
		return
	}

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Credits != 60 {
		t.Fatalf("want 60 credits for dinner opt-out, got %v", reloaded.Credits)
	}
}

func TestToggle_UnknownMenuIs404(t *testing.T) {
	r, _, _ := setupAttendanceRouter(t)

	if time.Now().Hour() >= services.CutoffHours[models.MealDinner] {
		t.Skip("cutoff already passed in local time")
	}

	w := postToggle(t, r, 12345, "DINNER", false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d: %s", w.Code, w.Body.String())
	}

	var resp utils.JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != 40430 {
		t.Fatalf("want business code 40430, got %d", resp.Code)
	}
}

func TestToggle_BadMealTypeIs400(t *testing.T) {
	r, _, _ := setupAttendanceRouter(t)

	w := postToggle(t, r, 1, "BRUNCH", false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMyToday_ListsOwnRecords(t *testing.T) {
	r, db, user := setupAttendanceRouter(t)

	day := services.MidnightOf(time.Now())
	rec := models.MealAttendance{UserID: user.ID, Date: day, MealType: models.MealLunch, OptedIn: false, MenuID: 1}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed attendance: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/attendance/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	want := fmt.Sprintf(`"user_id":%d`, user.ID)
	if !bytes.Contains(w.Body.Bytes(), []byte(want)) {
		t.Fatalf("response missing %s: %s", want, w.Body.String())
	}
}
