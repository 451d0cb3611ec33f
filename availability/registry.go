package availability

import (
	"context"
	"log"
	"sync"
)

// Doctors is the process-wide registry, set by Init and used by handlers
// and cron jobs.
var Doctors *Registry

// Init wires the default registry. Call once at startup after the database
// and redis connections are up.
func Init(store Store, snapshots *SnapshotStore, opts ...Option) {
	Doctors = NewRegistry(store, snapshots, opts...)
}

// Registry holds one Controller per signed-in doctor, building them lazily
// and restoring their state from the snapshot store.
type Registry struct {
	store     Store
	snapshots *SnapshotStore
	opts      []Option

	mu          sync.RWMutex
	controllers map[uint]*Controller
}

func NewRegistry(store Store, snapshots *SnapshotStore, opts ...Option) *Registry {
	return &Registry{
		store:       store,
		snapshots:   snapshots,
		opts:        opts,
		controllers: make(map[uint]*Controller),
	}
}

// Get returns the controller for a doctor, creating and loading it on
// first use.
func (r *Registry) Get(ctx context.Context, doctorID uint) (*Controller, error) {
	r.mu.RLock()
	ctrl, ok := r.controllers[doctorID]
	r.mu.RUnlock()
	if ok {
		return ctrl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ctrl, ok := r.controllers[doctorID]; ok {
		return ctrl, nil
	}

	ctrl = NewController(doctorID, r.store, r.opts...)
	if r.snapshots != nil {
		snap, err := r.snapshots.Load(ctx, doctorID)
		if err != nil {
			log.Printf("availability: failed to load snapshot for doctor %d: %v", doctorID, err)
		} else if snap != nil {
			ctrl.RestoreSnapshot(*snap)
		}
	}
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}

	r.controllers[doctorID] = ctrl
	return ctrl, nil
}

// Peek returns the controller if one is already live, without creating it.
func (r *Registry) Peek(doctorID uint) *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controllers[doctorID]
}

// Remove tears down a doctor's controller on logout, saving its snapshot
// so the session can resume within the day.
func (r *Registry) Remove(ctx context.Context, doctorID uint) {
	r.mu.Lock()
	ctrl, ok := r.controllers[doctorID]
	delete(r.controllers, doctorID)
	r.mu.Unlock()

	if !ok || r.snapshots == nil {
		return
	}
	if err := r.snapshots.Save(ctx, ctrl.Snapshot()); err != nil {
		log.Printf("availability: failed to save snapshot for doctor %d: %v", doctorID, err)
	}
}

// Sweep ticks every live controller. Driven by the monitor so automatic
// transitions happen even when a doctor's browser is closed.
func (r *Registry) Sweep(ctx context.Context) {
	r.mu.RLock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, ctrl := range r.controllers {
		controllers = append(controllers, ctrl)
	}
	r.mu.RUnlock()

	for _, ctrl := range controllers {
		events := ctrl.Tick(ctx)
		for _, e := range events {
			log.Printf("availability: doctor %d: %s", e.DoctorID, e.Message)
		}
		if r.snapshots != nil {
			if err := r.snapshots.Save(ctx, ctrl.Snapshot()); err != nil {
				log.Printf("availability: failed to save snapshot: %v", err)
			}
		}
	}
}
