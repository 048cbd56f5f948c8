// Package rdb provides a sheetpm.BlobStore on a relational database through GORM.
package rdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DefaultKey is the blob key used when none is configured.
const DefaultKey = "excelProjectManagerWorkbook"

// BlobRecord is the persistence model for one blob.
// Table name: blobs
type BlobRecord struct {
	Name      string    `gorm:"primaryKey;type:text;not null"`
	Data      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (BlobRecord) TableName() string { return "blobs" }

// OpenFromURL opens a GORM DB based on a simple db-url string.
// Supported:
//   - sqlite:<dsn>   e.g., sqlite:./sheetpm.db or sqlite::memory:
//   - sqlite3:<dsn>  alias of sqlite
func OpenFromURL(dbURL string) (*gorm.DB, error) {
	var dsn string
	switch {
	case strings.HasPrefix(dbURL, "sqlite:"):
		dsn = strings.TrimPrefix(dbURL, "sqlite:")
	case strings.HasPrefix(dbURL, "sqlite3:"):
		dsn = strings.TrimPrefix(dbURL, "sqlite3:")
	default:
		return nil, fmt.Errorf("unsupported db scheme: %s", dbURL)
	}
	if dsn == "" {
		dsn = "./sheetpm.db"
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
}

// AutoMigrate applies schema migrations for all RDB models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BlobRecord{})
}

// Store is a GORM-backed implementation of sheetpm.BlobStore.
type Store struct {
	db  *gorm.DB
	key string
}

// NewStore returns a Store reading and writing the row identified by key.
func NewStore(db *gorm.DB, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{db: db, key: key}
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var rec BlobRecord
	if err := s.db.WithContext(ctx).First(&rec, "name = ?", s.key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sheetpm.ErrBlobNotFound
		}
		return nil, err
	}
	return []byte(rec.Data), nil
}

func (s *Store) Save(ctx context.Context, data []byte) error {
	rec := &BlobRecord{Name: s.key, Data: string(data), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(rec).Error
}

// Ensure interface satisfaction.
// Close releases the underlying database connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ sheetpm.BlobStore = (*Store)(nil)
