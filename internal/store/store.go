// Package store persists the agent's local state: the single cached
// device registration and the reminder definitions that must survive a
// restart.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps the local sqlite database
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the sqlite database at path and migrates the
// local schemas.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	if err := db.AutoMigrate(&model.DeviceRegistration{}, &model.Reminder{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local schemas: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// GetRegistration returns the cached device registration, or nil when no
// record is cached.
func (s *Store) GetRegistration(ctx context.Context) (*model.DeviceRegistration, error) {
	var reg model.DeviceRegistration
	err := s.db.WithContext(ctx).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read device registration: %w", err)
	}
	return &reg, nil
}

// SaveRegistration replaces the cached device registration. The cache
// holds at most one row; the replace happens in a transaction so readers
// never observe a half-written record.
func (s *Store) SaveRegistration(ctx context.Context, reg *model.DeviceRegistration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.DeviceRegistration{}).Error; err != nil {
			return fmt.Errorf("failed to clear prior registration: %w", err)
		}
		reg.ID = 0
		if err := tx.Create(reg).Error; err != nil {
			return fmt.Errorf("failed to save registration: %w", err)
		}
		return nil
	})
}

// ClearRegistration removes the cached device registration
func (s *Store) ClearRegistration(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.DeviceRegistration{}).Error; err != nil {
		return fmt.Errorf("failed to clear registration: %w", err)
	}
	return nil
}

// CreateReminder persists a reminder definition
func (s *Store) CreateReminder(ctx context.Context, reminder *model.Reminder) error {
	now := time.Now()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// ListReminders returns all persisted reminders
func (s *Store) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).Order("created_at").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// GetReminder returns one reminder by id, or nil when absent
func (s *Store) GetReminder(ctx context.Context, id string) (*model.Reminder, error) {
	var reminder model.Reminder
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder: %w", err)
	}
	return &reminder, nil
}

// DeleteReminder removes one reminder by id
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}
