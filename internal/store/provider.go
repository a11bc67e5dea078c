package store

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a database whose lifetime is tied to its connection.
const MemoryPath = ":memory:"

// Open opens (or creates) the SQLite database at path and returns a migrated
// store.
//
// For MemoryPath the pool is pinned to a single connection that is never
// recycled: an in-memory SQLite database lives and dies with its connection.
// Handing out a second connection, or letting the pool close the first, would
// silently produce an empty database. File-backed databases keep the default
// per-call pooling.
func Open(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if path == MemoryPath {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	s := NewGormStore(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}

	logrus.Infof("opened document store at %s", path)
	return s, nil
}
