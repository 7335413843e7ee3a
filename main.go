package main

import (
	"github.com/hosteldesk/messmate/config"
	"github.com/hosteldesk/messmate/jobs"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/routes"
	"github.com/hosteldesk/messmate/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Menu{},
		&models.MealAttendance{},
		&models.CreditTransaction{},
		&models.Complaint{},
		&models.Rating{},
		&models.Announcement{},
	)

	r := routes.SetupRouter(db)

	scheduler := jobs.Start(db)
	defer scheduler.Stop()

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
