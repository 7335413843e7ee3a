package models

import "time"

// Menu is the published menu for one meal on one calendar day. Items holds a
// JSON array of dish names; Date carries no time-of-day component.
type Menu struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"index:idx_menu_date_meal,unique;type:date;not null" json:"date"`
	MealType    MealType  `gorm:"index:idx_menu_date_meal,unique;size:16;not null" json:"meal_type"`
	Items       string    `gorm:"type:text;not null" json:"items"`
	SpecialItem string    `gorm:"size:255" json:"special_item"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
