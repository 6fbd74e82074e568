package store

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todo-tracker/internal/task"
)

// GormStore keeps tasks in a SQLite database through GORM.
type GormStore struct {
	db   *gorm.DB
	path string
}

func NewGormStore(path string) (*GormStore, error) {
	logLevel := logger.Silent
	if dbDebug() {
		logLevel = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&taskRow{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[store] Opened SQLite database %s", path)
	return &GormStore{db: db, path: path}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, &IOError{Op: "read", Path: s.path, Err: fmt.Errorf("query tasks: %w", err)}
	}
	return fromRows(s.path, rows)
}

func (s *GormStore) Save(ctx context.Context, tasks []task.Task) error {
	rows := toRows(tasks)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&taskRow{}).Error; err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
