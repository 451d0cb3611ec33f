package availability

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, clock Clock) (*Registry, *memStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := newMemStore()
	reg := NewRegistry(store, NewSnapshotStore(client), WithClock(clock), WithSaveRetry(3, 0))
	return reg, store
}

func TestRegistryGetCreatesAndReuses(t *testing.T) {
	clock := &fakeClock{now: at(8, 0)}
	reg, _ := newTestRegistry(t, clock)
	ctx := context.Background()

	ctrl, err := reg.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateNoSchedule, ctrl.State())

	again, err := reg.Get(ctx, 7)
	require.NoError(t, err)
	assert.Same(t, ctrl, again)
}

func TestRegistrySweepExpiresDoctors(t *testing.T) {
	clock := &fakeClock{now: at(10, 0)}
	reg, store := newTestRegistry(t, clock)
	ctx := context.Background()

	ctrl, err := reg.Get(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	clock.Set(at(17, 5))
	reg.Sweep(ctx)

	assert.Equal(t, StateExpired, ctrl.State())
	assert.False(t, store.lastAvailValue)
}

func TestRegistryRemoveSavesSnapshot(t *testing.T) {
	clock := &fakeClock{now: at(10, 0)}
	reg, _ := newTestRegistry(t, clock)
	ctx := context.Background()

	ctrl, err := reg.Get(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	reg.Remove(ctx, 7)
	assert.Nil(t, reg.Peek(7))

	// A new controller for the same doctor resumes from the snapshot.
	restored, err := reg.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateOnline, restored.State())
	assert.Empty(t, restored.Tick(ctx))
}

func TestMonitorStartStop(t *testing.T) {
	clock := &fakeClock{now: at(10, 0)}
	reg, _ := newTestRegistry(t, clock)
	ctx := context.Background()

	ctrl, err := reg.Get(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	mon := NewMonitor(reg, 10*time.Millisecond)
	mon.Start(ctx)

	clock.Set(at(17, 5))
	require.Eventually(t, func() bool {
		return ctrl.State() == StateExpired
	}, time.Second, 10*time.Millisecond)

	mon.Stop()
	// Stop is idempotent and safe to call twice.
	mon.Stop()
}
