package model

import "time"

// User is one half of the pair sharing the checklist.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	AvatarEmoji    string    `gorm:"size:10;default:'❤️'" json:"avatar_emoji"`
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
