package availability

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultInterval is how often the monitor re-evaluates transition
// conditions. Transitions are level-triggered idempotent checks, so any
// granularity between a second and a minute gives the same observable
// behavior; one minute is plenty for human schedules.
const DefaultInterval = time.Minute

// Monitor drives the registry's sweep on a fixed interval. The ticker is
// acquired on Start and released on Stop so no callbacks run after
// teardown.
type Monitor struct {
	registry *Registry
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(registry *Registry, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{registry: registry, interval: interval}
}

func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return // already running
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		log.Printf("availability: monitor started (interval %s)", m.interval)
		for {
			select {
			case <-ctx.Done():
				log.Println("availability: monitor stopped")
				return
			case <-ticker.C:
				m.registry.Sweep(ctx)
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
