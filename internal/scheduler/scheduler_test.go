package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingNotifier captures deliveries for assertions
type recordingNotifier struct {
	mu    sync.Mutex
	fired []string
}

func (n *recordingNotifier) Notify(reminderID, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fired = append(n.fired, reminderID)
}

func (n *recordingNotifier) firedIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.fired...)
}

func futureTrigger(d time.Duration) model.ReminderTrigger {
	fireAt := time.Now().Add(d)
	return model.ReminderTrigger{
		Kind:   model.TriggerKindAbsolute,
		Hour:   fireAt.Hour(),
		Minute: fireAt.Minute(),
		FireAt: &fireAt,
	}
}

func TestSchedule_AbsoluteFires(t *testing.T) {
	notifier := &recordingNotifier{}
	s := New(notifier, zap.NewNop())
	s.Start()
	defer s.Stop()

	err := s.Schedule("rem-1", futureTrigger(30*time.Millisecond), "Title", "Body")
	require.NoError(t, err)
	assert.True(t, s.Active("rem-1"))

	assert.Eventually(t, func() bool {
		fired := notifier.firedIDs()
		return len(fired) == 1 && fired[0] == "rem-1"
	}, time.Second, 10*time.Millisecond)

	assert.False(t, s.Active("rem-1"))
}

func TestSchedule_AbsoluteRejectsPastInstant(t *testing.T) {
	s := New(&recordingNotifier{}, zap.NewNop())
	defer s.Stop()

	past := time.Now().Add(-time.Minute)
	err := s.Schedule("rem-1", model.ReminderTrigger{
		Kind:   model.TriggerKindAbsolute,
		FireAt: &past,
	}, "Title", "Body")
	assert.Error(t, err)
}

func TestSchedule_AbsoluteRequiresInstant(t *testing.T) {
	s := New(&recordingNotifier{}, zap.NewNop())
	defer s.Stop()

	err := s.Schedule("rem-1", model.ReminderTrigger{Kind: model.TriggerKindAbsolute}, "Title", "Body")
	assert.Error(t, err)
}

func TestSchedule_Daily(t *testing.T) {
	s := New(&recordingNotifier{}, zap.NewNop())
	s.Start()
	defer s.Stop()

	err := s.Schedule("rem-1", model.ReminderTrigger{
		Kind:   model.TriggerKindDaily,
		Hour:   8,
		Minute: 30,
	}, "Title", "Body")
	require.NoError(t, err)
	assert.True(t, s.Active("rem-1"))
}

func TestSchedule_ReplacesPreviousTrigger(t *testing.T) {
	notifier := &recordingNotifier{}
	s := New(notifier, zap.NewNop())
	s.Start()
	defer s.Stop()

	require.NoError(t, s.Schedule("rem-1", futureTrigger(20*time.Millisecond), "Old", ""))
	require.NoError(t, s.Schedule("rem-1", futureTrigger(40*time.Millisecond), "New", ""))

	assert.Eventually(t, func() bool {
		return len(notifier.firedIDs()) == 1
	}, time.Second, 10*time.Millisecond)

	// The replaced timer never fires a second delivery
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, notifier.firedIDs(), 1)
}

func TestCancel_RemovesPendingTrigger(t *testing.T) {
	notifier := &recordingNotifier{}
	s := New(notifier, zap.NewNop())
	s.Start()
	defer s.Stop()

	require.NoError(t, s.Schedule("rem-1", futureTrigger(50*time.Millisecond), "Title", ""))
	s.Cancel("rem-1")
	assert.False(t, s.Active("rem-1"))

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, notifier.firedIDs())
}

func TestCancel_UnknownIDIsNoOp(t *testing.T) {
	s := New(&recordingNotifier{}, zap.NewNop())
	defer s.Stop()

	s.Cancel("never-scheduled")
	assert.False(t, s.Active("never-scheduled"))
}
