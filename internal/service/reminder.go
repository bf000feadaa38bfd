package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
)

// ErrInvalidTime is returned for out-of-range wall-clock input. Silent
// clamping would schedule a reminder at the wrong time, which is a
// safety-relevant bug in a medication app.
var ErrInvalidTime = errors.New("hour must be in [0,23] and minute in [0,59]")

// ReminderPlanner computes concrete trigger descriptions for the
// notification scheduler. It knows nothing about quiet hours or timezone
// preferences beyond the clock location it is built with; suppression is
// delivery-layer policy.
type ReminderPlanner struct {
	loc *time.Location
}

// NewReminderPlanner creates a planner resolving wall-clock times in loc.
// A nil loc falls back to the device's local clock.
func NewReminderPlanner(loc *time.Location) *ReminderPlanner {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderPlanner{loc: loc}
}

// PlanDaily describes a reminder firing every day at hour:minute. The
// recurrence itself is delegated to the scheduler, which supports daily
// repeats natively.
func (p *ReminderPlanner) PlanDaily(hour, minute int) (model.ReminderTrigger, error) {
	if err := validateWallClock(hour, minute); err != nil {
		return model.ReminderTrigger{}, err
	}
	return model.ReminderTrigger{
		Kind:   model.TriggerKindDaily,
		Hour:   hour,
		Minute: minute,
	}, nil
}

// PlanOnce computes the next occurrence of hour:minute after now. If
// today's occurrence has already passed it rolls forward exactly one
// calendar day; a single rollover is sufficient because callers always
// plan for the next occurrence of the time. The returned FireAt is
// strictly after now.
func (p *ReminderPlanner) PlanOnce(hour, minute int, now time.Time) (model.ReminderTrigger, error) {
	if err := validateWallClock(hour, minute); err != nil {
		return model.ReminderTrigger{}, err
	}

	local := now.In(p.loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, p.loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	return model.ReminderTrigger{
		Kind:   model.TriggerKindAbsolute,
		Hour:   hour,
		Minute: minute,
		FireAt: &candidate,
	}, nil
}

func validateWallClock(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: got %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return nil
}
