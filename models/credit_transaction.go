package models

import "time"

// CreditTransaction is one entry in the append-only credit ledger. Rows are
// only ever created; no code path updates or deletes them. Reference is a
// uuid handed out for support lookups.
type CreditTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference string    `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Amount    float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	Date      time.Time `gorm:"type:date;not null" json:"date"`
	MealType  MealType  `gorm:"size:16;not null" json:"meal_type"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}
