// Package store persists URL check history so repeat lookups inside the
// freshness window can be served without re-running the analyzer.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// URLCheck is one persisted verdict.
type URLCheck struct {
	ID        uint      `gorm:"primaryKey"`
	URL       string    `gorm:"not null"`
	URLHash   string    `gorm:"index;not null"`
	Status    string    `gorm:"not null"`
	Score     int       `gorm:"not null"`
	UserID    string    `gorm:"index"`
	IPAddress string    `gorm:"column:ip_address"`
	CheckedAt time.Time `gorm:"index;not null"`
}

func (URLCheck) TableName() string { return "url_checks" }

// History is a gorm-backed log of URL checks.
type History struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path and migrates the schema.
// ":memory:" gives a private in-process database.
func Open(path string) (*History, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.AutoMigrate(&URLCheck{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &History{db: db}, nil
}

// Recent returns the newest check for urlHash made at or after since, or nil.
func (h *History) Recent(ctx context.Context, urlHash string, since time.Time) (*URLCheck, error) {
	var rec URLCheck
	err := h.db.WithContext(ctx).
		Where("url_hash = ? AND checked_at >= ?", urlHash, since.UTC()).
		Order("checked_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query recent check: %w", err)
	}
	return &rec, nil
}

// Record stores rec, stamping CheckedAt if unset. Times are kept in UTC so
// the textual comparisons SQLite performs stay ordered.
func (h *History) Record(ctx context.Context, rec *URLCheck) error {
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now()
	}
	rec.CheckedAt = rec.CheckedAt.UTC()
	if err := h.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("record check: %w", err)
	}
	return nil
}

func (h *History) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
