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

func newTestSnapshotStore(t *testing.T) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSnapshotStore(client), mr
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store, _ := newTestSnapshotStore(t)
	ctx := context.Background()

	snap := Snapshot{
		DoctorID:     7,
		Date:         "2025-03-10",
		Online:       true,
		StartedFired: true,
		SubmittedAt:  time.Date(2025, 3, 10, 8, 50, 0, 0, time.UTC),
		SavedAt:      time.Now(),
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap.DoctorID, loaded.DoctorID)
	assert.Equal(t, snap.Date, loaded.Date)
	assert.True(t, loaded.Online)
	assert.True(t, loaded.StartedFired)
}

func TestSnapshotStoreMissing(t *testing.T) {
	store, _ := newTestSnapshotStore(t)

	loaded, err := store.Load(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSnapshotStoreDiscardsStale(t *testing.T) {
	store, _ := newTestSnapshotStore(t)
	ctx := context.Background()

	snap := Snapshot{
		DoctorID: 7,
		Date:     "2025-03-09",
		SavedAt:  time.Now().Add(-25 * time.Hour),
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, loaded, "snapshots beyond the recency window are discarded")
}

func TestSnapshotStoreDelete(t *testing.T) {
	store, _ := newTestSnapshotStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Snapshot{DoctorID: 7, SavedAt: time.Now()}))
	require.NoError(t, store.Delete(ctx, 7))

	loaded, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestControllerSnapshotRestore(t *testing.T) {
	ctrl, store, clock, _ := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))

	snap := ctrl.Snapshot()
	assert.Equal(t, "2025-03-10", snap.Date)
	assert.True(t, snap.Online)

	// Same-day restore resumes the session, including the one-shot latches.
	restored := NewController(7, store, WithClock(clock), WithSaveRetry(3, 0))
	restored.RestoreSnapshot(snap)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, StateOnline, restored.State())
	assert.Empty(t, restored.Tick(ctx), "started prompt already fired before the snapshot")
}

func TestControllerSnapshotIgnoredAcrossDays(t *testing.T) {
	ctrl, store, clock, _ := newTestController(at(10, 0))
	ctx := context.Background()

	require.NoError(t, ctrl.SetSchedule(ctx, SetScheduleInput{StartTime: "09:00", EndTime: "17:00"}))
	require.NoError(t, ctrl.GoOnline(ctx))
	snap := ctrl.Snapshot()

	clock.Set(time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC))
	restored := NewController(7, store, WithClock(clock), WithSaveRetry(3, 0))
	restored.RestoreSnapshot(snap)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, StateNoSchedule, restored.State())
	assert.False(t, restored.IsOnline())
}
