package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell/health-portal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

type memStore struct {
	mu        sync.Mutex
	schedules map[string]*models.DailySchedule

	failSaves      bool
	scheduleSaves  int
	availSaves     int
	lastAvailValue bool
}

func newMemStore() *memStore {
	return &memStore{schedules: make(map[string]*models.DailySchedule)}
}

func storeKey(doctorID uint, date string) string {
	return fmt.Sprintf("%d/%s", doctorID, date)
}

func (m *memStore) LoadTodaySchedule(_ context.Context, doctorID uint, date string) (*models.DailySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedules[storeKey(doctorID, date)]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	cp := *sched
	return &cp, nil
}

func (m *memStore) SaveSchedule(_ context.Context, sched *models.DailySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleSaves++
	if m.failSaves {
		return errors.New("connection refused")
	}
	cp := *sched
	m.schedules[storeKey(sched.DoctorID, sched.Date)] = &cp
	return nil
}

func (m *memStore) SaveAvailability(_ context.Context, doctorID uint, date string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availSaves++
	m.lastAvailValue = available
	if m.failSaves {
		return errors.New("connection refused")
	}
	if sched, ok := m.schedules[storeKey(doctorID, date)]; ok {
		sched.IsAvailable = available
	}
	return nil
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func newTestController(clockTime time.Time) (*Controller, *memStore, *fakeClock, *[]Event) {
	clock := &fakeClock{now: clockTime}
	store := newMemStore()
	var events []Event
	ctrl := NewController(7, store,
		WithClock(clock),
		WithSaveRetry(3, 0),
		WithNotify(func(e Event) { events = append(events, e) }),
	)
	return ctrl, store, clock, &events
}

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		firstSetup bool
		wantCode   string
	}{
		{"valid full day", "09:00", "17:00", false, ""},
		{"valid minimum", "10:00", "10:30", false, ""},
		{"missing start", "", "17:00", false, CodeInvalidTimeRange},
		{"missing end", "09:00", "", false, CodeInvalidTimeRange},
		{"end equals start", "09:00", "09:00", false, CodeInvalidTimeRange},
		{"end before start", "17:00", "09:00", false, CodeInvalidTimeRange},
		{"garbled start", "9am", "17:00", false, CodeInvalidTimeRange},
		{"twenty minute span", "10:00", "10:20", false, CodeDurationTooShort},
		{"first setup needs an hour", "10:00", "10:45", true, CodeDurationTooShort},
		{"first setup exactly an hour", "10:00", "11:00", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWindow(tt.start, tt.end, tt.firstSetup)
			if tt.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestValidateBreak(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name                 string
		breakStart, breakEnd *string
		wantCode             string
	}{
		{"inside window", str("12:00"), str("13:00"), ""},
		{"missing times", nil, nil, CodeBreakOutsideSchedule},
		{"before window", str("08:00"), str("09:30"), CodeBreakOutsideSchedule},
		{"after window", str("16:30"), str("17:30"), CodeBreakOutsideSchedule},
		{"inverted", str("13:00"), str("12:00"), CodeBreakOutsideSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBreak("09:00", "17:00", tt.breakStart, tt.breakEnd)
			if tt.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

// Scenario A: doctor with no schedule logs in; the setup prompt fires.
func TestLoadWithoutSchedule(t *testing.T) {
	ctrl, _, _, events := newTestController(at(8, 0))

	require.NoError(t, ctrl.Load(context.Background()))

	assert.Equal(t, StateNoSchedule, ctrl.State())
	require.Len(t, *events, 1)
	assert.Equal(t, EventSetupNeeded, (*events)[0].Type)
}

// Scenario B: schedule set before the window opens, then the clock crosses
// the start time. The "just started" prompt fires exactly once.
func TestStartCrossing(t *testing.T) {
	ctrl, _, clock, events := newTestController(at(8, 50))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	assert.Equal(t, StatePending, ctrl.State())
	assert.Empty(t, *events)

	clock.Set(at(9, 0))
	ticked := ctrl.Tick(ctx)
	require.Len(t, ticked, 1)
	assert.Equal(t, EventScheduleStarted, ticked[0].Type)
	assert.Equal(t, StateActiveOffline, ctrl.State())

	// Level-triggered but latched: further ticks stay quiet.
	assert.Empty(t, ctrl.Tick(ctx))
	assert.Empty(t, ctrl.Tick(ctx))
}

// The started prompt is suppressed when the schedule was not recently
// submitted (e.g. restored from an old snapshot).
func TestStartPromptSuppressedWithoutRecentSubmit(t *testing.T) {
	ctrl, store, clock, _ := newTestController(at(8, 0))
	ctx := context.Background()

	require.NoError(t, store.SaveSchedule(ctx, &models.DailySchedule{
		DoctorID: 7, Date: "2025-03-10", StartTime: "09:00", EndTime: "17:00", IsActive: true,
	}))
	require.NoError(t, ctrl.Load(ctx))

	clock.Set(at(9, 0))
	assert.Empty(t, ctrl.Tick(ctx))
	assert.Equal(t, StateActiveOffline, ctrl.State())
}

// Scenario C: doctor goes online inside the window; at the end time the
// controller forces availability off exactly once and raises the expired
// prompt.
func TestAutoOfflineOnExpiry(t *testing.T) {
	ctrl, store, clock, _ := newTestController(at(9, 5))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))
	assert.Equal(t, StateOnline, ctrl.State())
	assert.True(t, ctrl.IsOnline())

	clock.Set(at(17, 0))
	availSavesBefore := store.availSaves
	ticked := ctrl.Tick(ctx)
	require.Len(t, ticked, 1)
	assert.Equal(t, EventScheduleExpired, ticked[0].Type)
	assert.ElementsMatch(t, []string{"extend", "go_offline"}, ticked[0].Options)
	assert.Equal(t, StateExpired, ctrl.State())
	assert.False(t, ctrl.IsOnline())
	assert.Equal(t, availSavesBefore+1, store.availSaves)
	assert.False(t, store.lastAvailValue)

	// Idempotent on further ticks: no duplicate prompt, no duplicate save.
	assert.Empty(t, ctrl.Tick(ctx))
	assert.Equal(t, availSavesBefore+1, store.availSaves)
}

// Scenario D: extending an expired schedule pushes the end forward and
// re-enters the online state automatically.
func TestExtendAfterExpiry(t *testing.T) {
	ctrl, _, clock, _ := newTestController(at(9, 5))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	clock.Set(at(17, 30))
	ctrl.Tick(ctx)
	require.Equal(t, StateExpired, ctrl.State())

	require.NoError(t, ctrl.Extend(ctx, 2))
	st := ctrl.Status()
	assert.Equal(t, "19:00", st.EndTime)
	assert.Equal(t, StateOnline, ctrl.State())

	// A second expiry at the new end time still fires.
	clock.Set(at(19, 0))
	ticked := ctrl.Tick(ctx)
	require.Len(t, ticked, 1)
	assert.Equal(t, EventScheduleExpired, ticked[0].Type)
}

func TestExtendWrapsPastMidnight(t *testing.T) {
	ctrl, _, clock, _ := newTestController(at(22, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "15:00", EndTime: "23:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	clock.Set(at(23, 15))
	ctrl.Tick(ctx)
	require.Equal(t, StateExpired, ctrl.State())

	require.NoError(t, ctrl.Extend(ctx, 2))
	assert.Equal(t, "01:00", ctrl.Status().EndTime)
	assert.Equal(t, StateOnline, ctrl.State())
}

// Scenario E: an invalid write is rejected and the prior schedule is
// retained.
func TestRejectedWriteRetainsPriorSchedule(t *testing.T) {
	ctrl, store, _, _ := newTestController(at(9, 30))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	scheduleSaves := store.scheduleSaves

	err := ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "10:00", EndTime: "10:20", Confirm: true})
	require.Error(t, err)
	var availErr *Error
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, CodeDurationTooShort, availErr.Code)

	st := ctrl.Status()
	assert.Equal(t, "09:00", st.StartTime)
	assert.Equal(t, "17:00", st.EndTime)
	// Validation failures never reach the store.
	assert.Equal(t, scheduleSaves, store.scheduleSaves)
}

func TestOverwriteRequiresConfirmation(t *testing.T) {
	ctrl, _, _, _ := newTestController(at(8, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))

	err := ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "10:00", EndTime: "18:00"})
	var availErr *Error
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, CodeScheduleExists, availErr.Code)

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "10:00", EndTime: "18:00", Confirm: true}))
	assert.Equal(t, "10:00", ctrl.Status().StartTime)
}

// Setting a schedule whose window already covers the current time offers
// to go online immediately.
func TestSetScheduleInsideWindowPrompts(t *testing.T) {
	ctrl, _, _, events := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	assert.Equal(t, StateActiveOffline, ctrl.State())
	require.Len(t, *events, 1)
	assert.Equal(t, EventScheduleStarted, (*events)[0].Type)
}

func TestGoOnlineGating(t *testing.T) {
	ctx := context.Background()

	t.Run("no schedule", func(t *testing.T) {
		ctrl, _, _, _ := newTestController(at(10, 0))
		err := ctrl.GoOnline(ctx)
		var availErr *Error
		require.ErrorAs(t, err, &availErr)
		assert.Equal(t, CodeNoScheduleSet, availErr.Code)
		assert.False(t, ctrl.IsOnline())
	})

	t.Run("before window", func(t *testing.T) {
		ctrl, _, _, _ := newTestController(at(8, 0))
		require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
		err := ctrl.GoOnline(ctx)
		var availErr *Error
		require.ErrorAs(t, err, &availErr)
		assert.Equal(t, CodeOutsideHours, availErr.Code)
		assert.Contains(t, availErr.Message, "09:00-17:00")
	})

	t.Run("after window", func(t *testing.T) {
		ctrl, _, clock, _ := newTestController(at(10, 0))
		require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
		clock.Set(at(18, 0))
		err := ctrl.GoOnline(ctx)
		var availErr *Error
		require.ErrorAs(t, err, &availErr)
		assert.Equal(t, CodeOutsideHours, availErr.Code)
	})

	t.Run("within window", func(t *testing.T) {
		ctrl, store, _, _ := newTestController(at(10, 0))
		require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
		require.NoError(t, ctrl.GoOnline(ctx))
		assert.True(t, ctrl.IsOnline())
		assert.True(t, store.lastAvailValue)
	})
}

func TestGoOffline(t *testing.T) {
	ctrl, store, _, _ := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))
	require.NoError(t, ctrl.GoOffline(ctx))

	assert.Equal(t, StateActiveOffline, ctrl.State())
	assert.False(t, store.lastAvailValue)
}

func TestMidnightRollover(t *testing.T) {
	ctrl, _, clock, _ := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	clock.Set(time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC))
	ctrl.Tick(ctx)

	assert.Equal(t, StateNoSchedule, ctrl.State())
	assert.False(t, ctrl.IsOnline())

	// The new day's schedule can be set without a confirm flag.
	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
}

func TestUpdateBreak(t *testing.T) {
	str := func(s string) *string { return &s }
	ctrl, store, _, _ := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))

	require.NoError(t, ctrl.UpdateBreak(ctx, str("12:00"), str("13:00")))
	st := ctrl.Status()
	require.NotNil(t, st.BreakStart)
	assert.Equal(t, "12:00", *st.BreakStart)

	err := ctrl.UpdateBreak(ctx, str("08:00"), str("09:30"))
	var availErr *Error
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, CodeBreakOutsideSchedule, availErr.Code)
	// Rejected update keeps the previous break.
	require.NotNil(t, ctrl.Status().BreakStart)
	assert.Equal(t, "12:00", *ctrl.Status().BreakStart)

	require.NoError(t, ctrl.UpdateBreak(ctx, nil, nil))
	assert.Nil(t, ctrl.Status().BreakStart)

	saved, err2 := store.LoadTodaySchedule(ctx, 7, "2025-03-10")
	require.NoError(t, err2)
	assert.False(t, saved.BreakEnabled)
}

// Round trip: a saved schedule loads back with the identical triple.
func TestScheduleRoundTrip(t *testing.T) {
	ctrl, store, clock, _ := newTestController(at(8, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))

	fresh := NewController(7, store, WithClock(clock), WithSaveRetry(3, 0))
	require.NoError(t, fresh.Load(ctx))
	st := fresh.Status()
	assert.Equal(t, "09:00", st.StartTime)
	assert.Equal(t, "17:00", st.EndTime)
	assert.True(t, st.IsActive)
}

// A failed sync keeps the optimistic local transition and surfaces a
// warning instead of rolling back.
func TestSyncFailureIsOptimistic(t *testing.T) {
	ctrl, store, _, events := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))

	store.failSaves = true
	availSavesBefore := store.availSaves
	require.NoError(t, ctrl.GoOnline(ctx))

	assert.True(t, ctrl.IsOnline(), "local transition must stick")
	assert.Equal(t, availSavesBefore+3, store.availSaves, "save retried with bounded attempts")
	assert.NotEmpty(t, ctrl.Status().SyncWarning)

	var sawSyncFailed bool
	for _, e := range *events {
		if e.Type == EventSyncFailed {
			sawSyncFailed = true
		}
	}
	assert.True(t, sawSyncFailed)

	// Reconcile on the next successful load: remote copy wins.
	store.failSaves = false
	require.NoError(t, ctrl.Load(ctx))
	assert.False(t, ctrl.IsOnline(), "remote never saw the online flag")
	assert.Empty(t, ctrl.Status().SyncWarning)
}
