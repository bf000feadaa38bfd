package service

import (
	"context"
	"fmt"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderStore persists reminder definitions
type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *model.Reminder) error
	ListReminders(ctx context.Context) ([]model.Reminder, error)
	GetReminder(ctx context.Context, id string) (*model.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
}

// TriggerScheduler hands triggers to the notification scheduler
type TriggerScheduler interface {
	Schedule(reminderID string, trigger model.ReminderTrigger, title, body string) error
	Cancel(reminderID string)
}

// ReminderService manages reminder definitions and their active triggers
type ReminderService struct {
	planner   *ReminderPlanner
	store     ReminderStore
	scheduler TriggerScheduler
	logger    *zap.Logger
}

// NewReminderService creates a new ReminderService
func NewReminderService(planner *ReminderPlanner, store ReminderStore, scheduler TriggerScheduler, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		planner:   planner,
		store:     store,
		scheduler: scheduler,
		logger:    logger,
	}
}

// CreateReminder plans a trigger for the requested wall-clock time,
// persists the reminder and activates it.
func (s *ReminderService) CreateReminder(ctx context.Context, profileID, title, body string, hour, minute int, repeat model.RepeatMode) (*model.Reminder, error) {
	if title == "" {
		return nil, fmt.Errorf("reminder title is required")
	}

	trigger, err := s.planTrigger(hour, minute, repeat, time.Now())
	if err != nil {
		return nil, err
	}

	reminder := &model.Reminder{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Title:     title,
		Body:      body,
		Hour:      hour,
		Minute:    minute,
		Repeat:    repeat,
		FireAt:    trigger.FireAt,
	}

	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		s.logger.Error("failed to persist reminder",
			zap.Error(err),
			zap.String("profile_id", profileID),
		)
		return nil, fmt.Errorf("failed to persist reminder: %w", err)
	}

	if err := s.scheduler.Schedule(reminder.ID, trigger, reminder.Title, reminder.Body); err != nil {
		s.logger.Error("failed to activate reminder trigger",
			zap.Error(err),
			zap.String("reminder_id", reminder.ID),
		)
		return nil, fmt.Errorf("failed to activate reminder: %w", err)
	}

	s.logger.Info("reminder created",
		zap.String("reminder_id", reminder.ID),
		zap.String("profile_id", profileID),
		zap.String("repeat", string(repeat)),
		zap.Int("hour", hour),
		zap.Int("minute", minute),
	)

	return reminder, nil
}

// ListReminders returns all persisted reminders
func (s *ReminderService) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	reminders, err := s.store.ListReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// DeleteReminder cancels the active trigger and removes the definition
func (s *ReminderService) DeleteReminder(ctx context.Context, id string) error {
	reminder, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read reminder: %w", err)
	}
	if reminder == nil {
		return fmt.Errorf("reminder not found: %s", id)
	}

	s.scheduler.Cancel(id)

	if err := s.store.DeleteReminder(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	s.logger.Info("reminder deleted", zap.String("reminder_id", id))
	return nil
}

// RestoreReminders reactivates persisted reminders after a restart. Daily
// reminders are rescheduled as-is; one-shot reminders whose instant has
// passed are replanned to the next occurrence of their wall-clock time.
func (s *ReminderService) RestoreReminders(ctx context.Context) error {
	reminders, err := s.store.ListReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminders for restore: %w", err)
	}

	restored := 0
	for _, reminder := range reminders {
		trigger, err := s.planTrigger(reminder.Hour, reminder.Minute, reminder.Repeat, time.Now())
		if err != nil {
			s.logger.Warn("skipping unrestorable reminder",
				zap.Error(err),
				zap.String("reminder_id", reminder.ID),
			)
			continue
		}
		if err := s.scheduler.Schedule(reminder.ID, trigger, reminder.Title, reminder.Body); err != nil {
			s.logger.Warn("failed to restore reminder trigger",
				zap.Error(err),
				zap.String("reminder_id", reminder.ID),
			)
			continue
		}
		restored++
	}

	s.logger.Info("reminders restored",
		zap.Int("restored", restored),
		zap.Int("total", len(reminders)),
	)

	return nil
}

func (s *ReminderService) planTrigger(hour, minute int, repeat model.RepeatMode, now time.Time) (model.ReminderTrigger, error) {
	switch repeat {
	case model.RepeatDaily:
		return s.planner.PlanDaily(hour, minute)
	case model.RepeatOnce:
		return s.planner.PlanOnce(hour, minute, now)
	default:
		return model.ReminderTrigger{}, fmt.Errorf("unknown repeat mode %q", repeat)
	}
}
