package models

import "time"

// Announcement is a mess-wide notice published by an admin. ExpiresAt is nil
// for announcements that never expire.
type Announcement struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Priority  string     `gorm:"size:16;not null;default:'NORMAL'" json:"priority"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`
	AuthorID  uint       `gorm:"index;not null" json:"author_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Author    User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
