package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values assignable to an account. Every new account starts as a student.
const (
	RoleStudent     = "STUDENT"
	RoleMessManager = "MESS_MANAGER"
	RoleAdmin       = "ADMIN"
)

// ValidRole reports whether role is one of the assignable role values.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleMessManager, RoleAdmin:
		return true
	}
	return false
}

// User represents a hostel resident or mess staff account. Passwords are stored
// as bcrypt hashes only. Credits is mutated exclusively by the credit service.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:128;not null" json:"name"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Provider     string         `gorm:"size:32" json:"provider"`
	ProviderID   string         `gorm:"size:255" json:"-"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Hostel       string         `gorm:"size:64" json:"hostel"`
	Room         string         `gorm:"size:16" json:"room"`
	Role         string         `gorm:"size:16;not null;default:'STUDENT'" json:"role"`
	Credits      float64        `gorm:"type:decimal(10,2);not null;default:0" json:"credits"`
	RatingStreak int            `gorm:"not null;default:0" json:"rating_streak"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps and the default role are set even when
// the caller did not provide them.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
