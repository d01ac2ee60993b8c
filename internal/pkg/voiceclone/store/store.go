// Package store persists a log of generations to a local SQLite database so
// the CLI and the web UI can show recent output.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// textLimit keeps long scripts from bloating the history table.
const textLimit = 500

// Generation is one synthesis run.
type Generation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Text        string    `json:"text"`
	Voice       string    `json:"voice"`
	Language    string    `json:"language"`
	OutputPath  string    `json:"output_path"`
	DurationSec float64   `json:"duration_sec"`
	Origin      string    `json:"origin"` // cli, interactive or web
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.AutoMigrate(&Generation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Record(g *Generation) error {
	// Cut on rune boundaries so truncated CJK/Arabic text stays valid UTF-8.
	if runes := []rune(g.Text); len(runes) > textLimit {
		g.Text = string(runes[:textLimit])
	}
	if err := s.db.Create(g).Error; err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// Recent returns up to limit generations, newest first.
func (s *Store) Recent(limit int) ([]Generation, error) {
	var out []Generation
	if err := s.db.Order("created_at desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
