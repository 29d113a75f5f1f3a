// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// OpenDB returns a migrated SQLite database in t.TempDir().
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, sqlDB := open(t)
	// One connection serializes writers the way a busy SQLite file would.
	sqlDB.SetMaxOpenConns(1)
	return db
}

// OpenPooledDB is OpenDB with the driver's default connection pool, so
// goroutines really hit the file from separate connections.
func OpenPooledDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, _ := open(t)
	return db
}

func open(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, sqlDB
}

// SeedPair inserts the two users and returns them in id order.
func SeedPair(t *testing.T, db *gorm.DB) (model.User, model.User) {
	t.Helper()

	users := []model.User{
		{Name: "Jenifer", AvatarEmoji: "💕"},
		{Name: "Argenis", AvatarEmoji: "🍷"},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return users[0], users[1]
}

// SeedStreak writes a streak row as-is.
func SeedStreak(t *testing.T, db *gorm.DB, streak *model.Streak) {
	t.Helper()

	if err := db.Save(streak).Error; err != nil {
		t.Fatalf("seed streak: %v", err)
	}
}

// CountUnlocks returns how many achievements userID has unlocked.
func CountUnlocks(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.UserAchievement{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count unlocks: %v", err)
	}
	return count
}
