package models

import "time"

// MealAttendance records a student's opt-in/opt-out decision for one meal on
// one calendar day. Exactly one row may exist per (user, date, meal); the
// unique index backs the atomic upsert in the attendance service. Absence of
// a row means the student is opted in by default.
type MealAttendance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_attendance_key,unique;not null" json:"user_id"`
	Date      time.Time `gorm:"index:idx_attendance_key,unique;type:date;not null" json:"date"`
	MealType  MealType  `gorm:"index:idx_attendance_key,unique;size:16;not null" json:"meal_type"`
	OptedIn   bool      `gorm:"not null;default:true" json:"opted_in"`
	MenuID    uint      `gorm:"not null" json:"menu_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}
