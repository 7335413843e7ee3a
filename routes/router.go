package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/config"
	"github.com/hosteldesk/messmate/controllers"
	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/services"
	"github.com/hosteldesk/messmate/utils"
)

// SetupRouter wires routes, middlewares, services, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	creditService := services.NewCreditService(db)
	attendanceService := services.NewAttendanceService(db, creditService)

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	menuController := controllers.NewMenuController(db)
	attendanceController := controllers.NewAttendanceController(attendanceService)
	creditController := controllers.NewCreditController(creditService)
	complaintController := controllers.NewComplaintController(db)
	ratingController := controllers.NewRatingController(db)
	announcementController := controllers.NewAnnouncementController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/google/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/google/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Menus are readable without a session so the dining hall display works.
	api.GET("/menus", menuController.ListMenus)
	api.GET("/announcements", announcementController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/attendance",
		middleware.RoleRequired(models.RoleStudent),
		attendanceController.Toggle)
	protected.GET("/attendance/me", attendanceController.MyToday)
	protected.GET("/attendance",
		middleware.RoleRequired(models.RoleMessManager, models.RoleAdmin),
		attendanceController.ListForDate)

	protected.GET("/credits/balance", creditController.Balance)
	protected.GET("/credits/transactions", creditController.Transactions)

	protected.POST("/menus",
		middleware.RoleRequired(models.RoleMessManager, models.RoleAdmin),
		menuController.UpsertMenu)

	protected.POST("/complaints", complaintController.Create)
	protected.GET("/complaints", complaintController.List)
	protected.PATCH("/complaints/:id",
		middleware.RoleRequired(models.RoleMessManager, models.RoleAdmin),
		complaintController.UpdateStatus)

	protected.POST("/ratings",
		middleware.RoleRequired(models.RoleStudent),
		ratingController.Create)
	protected.GET("/ratings", ratingController.List)

	protected.POST("/announcements",
		middleware.RoleRequired(models.RoleAdmin),
		announcementController.Create)
	protected.DELETE("/announcements/:id",
		middleware.RoleRequired(models.RoleAdmin),
		announcementController.Delete)

	protected.GET("/users",
		middleware.RoleRequired(models.RoleAdmin),
		userController.ListUsers)
	protected.PATCH("/users/:id/role",
		middleware.RoleRequired(models.RoleAdmin),
		userController.UpdateRole)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
