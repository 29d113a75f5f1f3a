package model

import "time"

const SpecialDateAnniversary = "anniversary"

// SharedOwner marks a special date that belongs to the pair rather than
// one user. A zero value keeps the (type, user_id) unique index effective.
const SharedOwner uint = 0

// SpecialDate is a labeled calendar date such as the anniversary or a
// birthday.
type SpecialDate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:32;not null;uniqueIndex:idx_special_date_owner" json:"type"`
	UserID    uint      `gorm:"not null;default:0;uniqueIndex:idx_special_date_owner" json:"user_id"`
	Date      string    `gorm:"size:10;not null" json:"date"`
	Label     string    `gorm:"size:100" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
