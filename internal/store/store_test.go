package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agent.db"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestRegistration_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Empty cache reads as nil, not an error
	reg, err := s.GetRegistration(ctx)
	require.NoError(t, err)
	assert.Nil(t, reg)

	serverID := "dev-42"
	err = s.SaveRegistration(ctx, &model.DeviceRegistration{
		Token:          "tok-1",
		ServerDeviceID: &serverID,
		Platform:       model.PlatformAndroid,
		UpdatedAt:      time.Now(),
	})
	require.NoError(t, err)

	reg, err = s.GetRegistration(ctx)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, "tok-1", reg.Token)
	require.NotNil(t, reg.ServerDeviceID)
	assert.Equal(t, "dev-42", *reg.ServerDeviceID)
	assert.Equal(t, model.PlatformAndroid, reg.Platform)
}

func TestRegistration_SaveReplacesPriorRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRegistration(ctx, &model.DeviceRegistration{
		Token:    "tok-old",
		Platform: model.PlatformIOS,
	}))
	require.NoError(t, s.SaveRegistration(ctx, &model.DeviceRegistration{
		Token:    "tok-new",
		Platform: model.PlatformIOS,
	}))

	reg, err := s.GetRegistration(ctx)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, "tok-new", reg.Token)
}

func TestRegistration_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRegistration(ctx, &model.DeviceRegistration{Token: "tok-1"}))
	require.NoError(t, s.ClearRegistration(ctx))

	reg, err := s.GetRegistration(ctx)
	require.NoError(t, err)
	assert.Nil(t, reg)

	// Clearing an already empty cache is fine
	assert.NoError(t, s.ClearRegistration(ctx))
}

func TestReminders_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fireAt := time.Now().Add(2 * time.Hour).Round(time.Second)
	reminder := &model.Reminder{
		ID:        "rem-1",
		ProfileID: "p1",
		Title:     "Morning meds",
		Body:      "Take 2 tablets",
		Hour:      8,
		Minute:    0,
		Repeat:    model.RepeatOnce,
		FireAt:    &fireAt,
	}
	require.NoError(t, s.CreateReminder(ctx, reminder))

	got, err := s.GetReminder(ctx, "rem-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Morning meds", got.Title)
	assert.Equal(t, model.RepeatOnce, got.Repeat)
	require.NotNil(t, got.FireAt)

	list, err := s.ListReminders(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteReminder(ctx, "rem-1"))

	got, err = s.GetReminder(ctx, "rem-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
