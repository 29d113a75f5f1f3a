package model

import "time"

// AppUsageID is the primary key of the single first-use row.
const AppUsageID uint = 1

// AppUsage remembers when the pair started using the app.
type AppUsage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false"`
	InstallID string    `gorm:"size:36;not null"`
	FirstUse  time.Time `gorm:"not null"`
}

// AppUsage rows live in a singular table.
func (AppUsage) TableName() string {
	return "app_usage"
}
