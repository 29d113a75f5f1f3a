package model

import "time"

// Category groups tasks by area (home, errands, dates, etc.).
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Emoji     string    `gorm:"size:10" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
