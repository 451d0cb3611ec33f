package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotTTL bounds how long a saved controller state stays restorable.
// Snapshots older than one day refer to a schedule that is no longer
// authoritative and are discarded on load.
const SnapshotTTL = 24 * time.Hour

// Snapshot is the serializable slice of controller state: the machine
// position and its timestamps, nothing else. The schedule itself is owned
// by the Store and reloaded, not snapshotted.
type Snapshot struct {
	DoctorID     uint      `json:"doctor_id"`
	Date         string    `json:"date"`
	Online       bool      `json:"online"`
	StartedFired bool      `json:"started_fired"`
	ExpiredFired bool      `json:"expired_fired"`
	SubmittedAt  time.Time `json:"submitted_at"`
	SavedAt      time.Time `json:"saved_at"`
}

// Snapshot captures the controller's current machine state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		DoctorID:     c.doctorID,
		Online:       c.online,
		StartedFired: c.startedFired,
		ExpiredFired: c.expiredFired,
		SubmittedAt:  c.lastSubmit,
		SavedAt:      c.clock.Now(),
	}
	if c.schedule != nil {
		snap.Date = c.schedule.Date
	}
	return snap
}

// RestoreSnapshot reapplies a snapshot taken earlier in the same day.
// Snapshots for another day or older than SnapshotTTL are ignored; the
// schedule itself still comes from Load.
func (c *Controller) RestoreSnapshot(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if snap.Date != now.Format(dateLayout) || now.Sub(snap.SavedAt) > SnapshotTTL {
		return
	}
	c.online = snap.Online
	c.startedFired = snap.StartedFired
	c.expiredFired = snap.ExpiredFired
	c.lastSubmit = snap.SubmittedAt
}

// SnapshotStore keeps controller snapshots in redis so a doctor's session
// survives a process restart within the day.
type SnapshotStore struct {
	Client *redis.Client
}

func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{Client: client}
}

func snapshotKey(doctorID uint) string {
	return fmt.Sprintf("availability:state:%d", doctorID)
}

func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, snapshotKey(snap.DoctorID), data, SnapshotTTL).Err()
}

// Load returns the saved snapshot, or nil when none exists or the saved
// one has gone stale.
func (s *SnapshotStore) Load(ctx context.Context, doctorID uint) (*Snapshot, error) {
	data, err := s.Client.Get(ctx, snapshotKey(doctorID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if time.Since(snap.SavedAt) > SnapshotTTL {
		return nil, nil
	}
	return &snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, doctorID uint) error {
	return s.Client.Del(ctx, snapshotKey(doctorID)).Err()
}
