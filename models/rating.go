package models

import "time"

// Rating is a student's score for a published menu, 1 to 5.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	MenuID    uint      `gorm:"index;not null" json:"menu_id"`
	Score     int       `gorm:"not null" json:"score"`
	Comment   string    `gorm:"size:512" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Menu      Menu      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"menu,omitempty"`
}
