// Package scheduler delivers locally scheduled reminders. It fills the
// role the OS notification scheduler plays on mobile platforms: daily
// wall-clock rules via cron, absolute one-shot instants via timers, and
// cancellation by reminder id.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier receives the reminder payload when a trigger fires
type Notifier interface {
	Notify(reminderID, title, body string)
}

// LogNotifier writes deliveries to the log; the UI layer swaps in a real
// notification sink.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier
func (n *LogNotifier) Notify(reminderID, title, body string) {
	n.Logger.Info("reminder fired",
		zap.String("reminder_id", reminderID),
		zap.String("title", title),
		zap.String("body", body),
	)
}

// Scheduler manages active reminder triggers
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	timers  map[string]*time.Timer
}

// New creates a new Scheduler
func New(notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		notifier: notifier,
		logger:   logger,
		entries:  make(map[string]cron.EntryID),
		timers:   make(map[string]*time.Timer),
	}
}

// Start begins dispatching daily triggers
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("reminder scheduler started")
}

// Stop halts dispatching and drops all pending one-shot timers
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.logger.Info("reminder scheduler stopped")
}

// Schedule activates a trigger for the given reminder. Scheduling the same
// reminder id again replaces its previous trigger.
func (s *Scheduler) Schedule(reminderID string, trigger model.ReminderTrigger, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(reminderID)

	switch trigger.Kind {
	case model.TriggerKindDaily:
		spec := fmt.Sprintf("%d %d * * *", trigger.Minute, trigger.Hour)
		entryID, err := s.cron.AddFunc(spec, func() {
			s.notifier.Notify(reminderID, title, body)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule daily trigger: %w", err)
		}
		s.entries[reminderID] = entryID

	case model.TriggerKindAbsolute:
		if trigger.FireAt == nil {
			return fmt.Errorf("absolute trigger carries no fire instant")
		}
		delay := time.Until(*trigger.FireAt)
		if delay <= 0 {
			return fmt.Errorf("absolute trigger instant %s is not in the future", trigger.FireAt.Format(time.RFC3339))
		}
		s.timers[reminderID] = time.AfterFunc(delay, func() {
			s.notifier.Notify(reminderID, title, body)
			s.mu.Lock()
			delete(s.timers, reminderID)
			s.mu.Unlock()
		})

	default:
		return fmt.Errorf("unknown trigger kind %q", trigger.Kind)
	}

	s.logger.Info("reminder trigger scheduled",
		zap.String("reminder_id", reminderID),
		zap.String("kind", string(trigger.Kind)),
		zap.Int("hour", trigger.Hour),
		zap.Int("minute", trigger.Minute),
	)

	return nil
}

// Cancel removes any active trigger for the reminder id. Cancelling an
// unknown id is a no-op.
func (s *Scheduler) Cancel(reminderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(reminderID)
}

// Active reports whether the reminder id currently has a trigger
func (s *Scheduler) Active(reminderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hasEntry := s.entries[reminderID]
	_, hasTimer := s.timers[reminderID]
	return hasEntry || hasTimer
}

func (s *Scheduler) cancelLocked(reminderID string) {
	if entryID, ok := s.entries[reminderID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, reminderID)
	}
	if timer, ok := s.timers[reminderID]; ok {
		timer.Stop()
		delete(s.timers, reminderID)
	}
}
