package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/utils"
)

// expiredRetention is how long expired announcements stay queryable before
// the nightly purge removes them.
const expiredRetention = 30 * 24 * time.Hour

// Start registers background jobs and starts the scheduler. The returned
// cron can be stopped on shutdown.
func Start(db *gorm.DB) *cron.Cron {
	c := cron.New()

	// Purge long-expired announcements every night at 00:30.
	_, err := c.AddFunc("30 0 * * *", func() {
		cutoff := time.Now().Add(-expiredRetention)
		res := db.Where("expires_at IS NOT NULL AND expires_at < ?", cutoff).
			Delete(&models.Announcement{})
		if res.Error != nil {
			utils.Sugar.Errorf("announcement purge failed: %v", res.Error)
			return
		}
		if res.RowsAffected > 0 {
			utils.Sugar.Infof("purged %d expired announcements", res.RowsAffected)
		}
	})
	if err != nil {
		utils.Sugar.Errorf("failed to register announcement purge job: %v", err)
	}

	c.Start()
	return c
}
