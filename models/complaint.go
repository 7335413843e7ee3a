package models

import "time"

// Complaint lifecycle states.
const (
	ComplaintOpen       = "OPEN"
	ComplaintInProgress = "IN_PROGRESS"
	ComplaintResolved   = "RESOLVED"
)

// ValidComplaintStatus reports whether status is a known lifecycle state.
func ValidComplaintStatus(status string) bool {
	switch status {
	case ComplaintOpen, ComplaintInProgress, ComplaintResolved:
		return true
	}
	return false
}

// Complaint is a student-filed issue about the mess. UserID is nil for
// anonymous complaints.
type Complaint struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	Category    string    `gorm:"size:32;not null" json:"category"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	Status      string    `gorm:"size:16;not null;default:'OPEN'" json:"status"`
	Response    string    `gorm:"type:text" json:"response"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        *User     `json:"user,omitempty"`
}
