// Package availability owns the doctor schedule / online-status state
// machine. It decides when the doctor's visible status transitions
// automatically and raises prompts for the UI layer to present. The package
// has no HTTP dependencies; handlers and cron jobs drive it through the
// Registry.
package availability

import (
	"context"
	"sync"
	"time"

	"github.com/carewell/health-portal/models"
)

// State is the controller's position in the daily schedule lifecycle.
type State string

const (
	StateNoSchedule    State = "NO_SCHEDULE"
	StatePending       State = "SCHEDULED_PENDING"
	StateActiveOffline State = "SCHEDULED_ACTIVE_OFFLINE"
	StateOnline        State = "ONLINE"
	StateExpired       State = "EXPIRED"
)

const (
	dateLayout    = "2006-01-02"
	clockLayout   = "15:04"
	minutesPerDay = 24 * 60

	// MinScheduleDuration is enforced on every schedule edit.
	MinScheduleDuration = 30 * time.Minute
	// MinFirstSetupDuration is the stricter minimum for the first-login
	// setup flow.
	MinFirstSetupDuration = 60 * time.Minute

	// promptRecency bounds how long after a submit the "schedule just
	// started" prompt may still fire.
	promptRecency = 24 * time.Hour

	defaultSaveAttempts = 3
	defaultSaveBackoff  = 500 * time.Millisecond
)

// EventType identifies a prompt or warning raised by the controller.
type EventType string

const (
	EventSetupNeeded     EventType = "setup_needed"
	EventScheduleStarted EventType = "schedule_started"
	EventScheduleExpired EventType = "schedule_expired"
	EventSyncFailed      EventType = "sync_failed"
)

// Event is a prompt for the UI layer. Options, when present, are the
// actions the doctor may take in response.
type Event struct {
	Type     EventType `json:"type"`
	DoctorID uint      `json:"doctor_id"`
	Message  string    `json:"message"`
	Options  []string  `json:"options,omitempty"`
	At       time.Time `json:"at"`
}

// SetScheduleInput is a schedule write request.
type SetScheduleInput struct {
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	BreakEnabled bool    `json:"break_enabled"`
	BreakStart   *string `json:"break_start"`
	BreakEnd     *string `json:"break_end"`
	// FirstSetup applies the stricter one-hour minimum used on first login.
	FirstSetup bool `json:"first_setup"`
	// Confirm acknowledges overwriting an existing schedule for today.
	Confirm bool `json:"confirm"`
}

// Status is a point-in-time view served to the dashboard.
type Status struct {
	State       State   `json:"state"`
	Date        string  `json:"date,omitempty"`
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsOnline    bool    `json:"is_online"`
	BreakStart  *string `json:"break_start,omitempty"`
	BreakEnd    *string `json:"break_end,omitempty"`
	Prompt      *Event  `json:"prompt,omitempty"`
	SyncWarning string  `json:"sync_warning,omitempty"`
}

// Controller tracks one doctor's schedule and online status. All methods
// are safe for concurrent use; the mutex gives the same last-write-wins
// semantics the single-threaded UI had.
type Controller struct {
	doctorID uint
	store    Store
	clock    Clock
	notify   func(Event)

	saveAttempts int
	saveBackoff  time.Duration

	mu           sync.Mutex
	schedule     *models.DailySchedule
	online       bool
	startedFired bool
	expiredFired bool
	lastSubmit   time.Time
	prompt       *Event
	syncWarning  string
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithNotify registers a callback invoked for every prompt and warning.
// The callback runs with the controller lock held, so it must not call
// back into the controller.
func WithNotify(fn func(Event)) Option {
	return func(c *Controller) { c.notify = fn }
}

func WithSaveRetry(attempts int, backoff time.Duration) Option {
	return func(c *Controller) {
		if attempts > 0 {
			c.saveAttempts = attempts
		}
		c.saveBackoff = backoff
	}
}

func NewController(doctorID uint, store Store, opts ...Option) *Controller {
	c := &Controller{
		doctorID:     doctorID,
		store:        store,
		clock:        SystemClock{},
		saveAttempts: defaultSaveAttempts,
		saveBackoff:  defaultSaveBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load pulls today's schedule from the store. The remote copy wins over
// whatever the controller held locally, which reconciles any divergence
// left behind by a previously failed sync.
func (c *Controller) Load(ctx context.Context) error {
	now := c.clock.Now()
	sched, err := c.store.LoadTodaySchedule(ctx, c.doctorID, now.Format(dateLayout))
	if err == ErrScheduleNotFound {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.schedule = nil
		c.online = false
		c.emitLocked(Event{
			Type:     EventSetupNeeded,
			DoctorID: c.doctorID,
			Message:  "No schedule set for today. Set your working hours to start accepting appointments.",
			At:       now,
		})
		return nil
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = sched
	c.syncWarning = ""
	c.online = sched.IsAvailable && sched.IsActive && c.inWindowLocked(now)
	return nil
}

// SetSchedule validates and applies a new schedule for today. Validation
// failures leave the previous schedule untouched and never reach the
// database. Overwriting an existing schedule requires Confirm.
func (c *Controller) SetSchedule(ctx context.Context, in SetScheduleInput) error {
	if err := ValidateWindow(in.StartTime, in.EndTime, in.FirstSetup); err != nil {
		return err
	}
	if in.BreakEnabled {
		if err := ValidateBreak(in.StartTime, in.EndTime, in.BreakStart, in.BreakEnd); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	today := now.Format(dateLayout)
	if c.schedule != nil && c.schedule.Date == today && !in.Confirm {
		return newError(CodeScheduleExists,
			"a schedule for today already exists (%s-%s); confirm to replace it",
			c.schedule.StartTime, c.schedule.EndTime)
	}

	sched := &models.DailySchedule{
		DoctorID:     c.doctorID,
		Date:         today,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		IsActive:     true,
		BreakEnabled: in.BreakEnabled,
		BreakStart:   in.BreakStart,
		BreakEnd:     in.BreakEnd,
	}

	// Optimistic local apply; the save below may still fail.
	c.schedule = sched
	c.online = false
	c.startedFired = false
	c.expiredFired = false
	c.lastSubmit = now
	c.prompt = nil

	if c.inWindowLocked(now) {
		c.startedFired = true
		c.emitLocked(Event{
			Type:     EventScheduleStarted,
			DoctorID: c.doctorID,
			Message:  "Your schedule has already started. Would you like to go online now?",
			Options:  []string{"go_online", "stay_offline"},
			At:       now,
		})
	}

	c.persistScheduleLocked(ctx)
	return nil
}

// GoOnline marks the doctor as accepting appointments. It succeeds only
// when a schedule is set, active, and the current time is inside the
// window; otherwise it rejects with the concrete reason.
func (c *Controller) GoOnline(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	switch c.stateForLocked(now) {
	case StateNoSchedule:
		if c.schedule != nil && !c.schedule.IsActive {
			return newError(CodeScheduleInactive, "today's schedule is not active")
		}
		return newError(CodeNoScheduleSet, "no schedule set for today")
	case StatePending:
		return newError(CodeOutsideHours,
			"outside scheduled hours (%s-%s): your schedule has not started yet",
			c.schedule.StartTime, c.schedule.EndTime)
	case StateExpired:
		return newError(CodeOutsideHours,
			"outside scheduled hours (%s-%s): your schedule has ended",
			c.schedule.StartTime, c.schedule.EndTime)
	}

	c.online = true
	c.schedule.IsAvailable = true
	c.prompt = nil
	c.persistAvailabilityLocked(ctx, true)
	return nil
}

// GoOffline stops accepting appointments. Always allowed.
func (c *Controller) GoOffline(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.online = false
	c.prompt = nil
	if c.schedule != nil {
		c.schedule.IsAvailable = false
		c.persistAvailabilityLocked(ctx, false)
	}
	return nil
}

// UpdateBreak changes or clears the break on today's schedule without
// touching the working window. Passing nil times disables the break.
func (c *Controller) UpdateBreak(ctx context.Context, breakStart, breakEnd *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.schedule == nil || c.schedule.Date != now.Format(dateLayout) {
		return newError(CodeNoScheduleSet, "no schedule set for today")
	}

	if breakStart == nil && breakEnd == nil {
		c.schedule.BreakEnabled = false
		c.schedule.BreakStart = nil
		c.schedule.BreakEnd = nil
		c.persistScheduleLocked(ctx)
		return nil
	}

	if err := ValidateBreak(c.schedule.StartTime, c.schedule.EndTime, breakStart, breakEnd); err != nil {
		return err
	}
	c.schedule.BreakEnabled = true
	c.schedule.BreakStart = breakStart
	c.schedule.BreakEnd = breakEnd
	c.persistScheduleLocked(ctx)
	return nil
}

// Extend pushes today's end time forward by the given number of hours
// (wrapping at midnight) and re-enters the online state when the current
// time falls inside the extended window.
func (c *Controller) Extend(ctx context.Context, hours int) error {
	if hours <= 0 {
		return newError(CodeInvalidExtension, "extension must be at least one hour")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.schedule == nil || c.schedule.Date != now.Format(dateLayout) {
		return newError(CodeNoScheduleSet, "no schedule set for today")
	}

	endMin, err := parseClock(c.schedule.EndTime)
	if err != nil {
		return newError(CodeInvalidTimeRange, "stored end time %q is invalid", c.schedule.EndTime)
	}
	endMin = (endMin + hours*60) % minutesPerDay
	c.schedule.EndTime = formatClock(endMin)
	c.expiredFired = false
	c.prompt = nil

	if c.inWindowLocked(now) {
		c.online = true
		c.schedule.IsAvailable = true
	} else {
		c.online = false
		c.schedule.IsAvailable = false
	}

	c.persistScheduleLocked(ctx)
	c.persistAvailabilityLocked(ctx, c.schedule.IsAvailable)
	return nil
}

// Tick re-evaluates transition conditions against the current clock. It is
// level-triggered and idempotent: calling it more often than once per
// minute changes nothing. Returned events are the prompts raised by this
// tick.
func (c *Controller) Tick(ctx context.Context) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	var events []Event
	collect := func(e Event) { events = append(events, e) }

	// Midnight rollover: yesterday's schedule is no longer authoritative.
	if c.schedule != nil && c.schedule.Date != now.Format(dateLayout) {
		c.schedule = nil
		c.online = false
		c.startedFired = false
		c.expiredFired = false
		c.prompt = nil
	}

	if c.schedule == nil || !c.schedule.IsActive {
		return events
	}

	switch c.stateForLocked(now) {
	case StateActiveOffline, StateOnline:
		if !c.startedFired {
			c.startedFired = true
			// Fires once, and only when the schedule was submitted
			// recently enough for the prompt to make sense.
			if !c.lastSubmit.IsZero() && now.Sub(c.lastSubmit) <= promptRecency {
				e := Event{
					Type:     EventScheduleStarted,
					DoctorID: c.doctorID,
					Message:  "Your scheduled hours have started. Go online to accept appointments.",
					Options:  []string{"go_online", "stay_offline"},
					At:       now,
				}
				c.emitLocked(e)
				collect(e)
			}
		}
	case StateExpired:
		if !c.expiredFired {
			c.expiredFired = true
			wasAvailable := c.online || c.schedule.IsAvailable
			c.online = false
			c.schedule.IsAvailable = false
			if wasAvailable {
				c.persistAvailabilityLocked(ctx, false)
			}
			e := Event{
				Type:     EventScheduleExpired,
				DoctorID: c.doctorID,
				Message:  "Your schedule has ended. Extend your hours or stay offline.",
				Options:  []string{"extend", "go_offline"},
				At:       now,
			}
			c.emitLocked(e)
			collect(e)
		}
	}

	return events
}

// State derives the machine state from the schedule and the clock.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateForLocked(c.clock.Now())
}

// IsOnline reports whether the doctor is currently accepting appointments.
func (c *Controller) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online && c.stateForLocked(c.clock.Now()) == StateOnline
}

// Status returns the dashboard view of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:       c.stateForLocked(c.clock.Now()),
		IsOnline:    c.online,
		Prompt:      c.prompt,
		SyncWarning: c.syncWarning,
	}
	if c.schedule != nil {
		st.Date = c.schedule.Date
		st.StartTime = c.schedule.StartTime
		st.EndTime = c.schedule.EndTime
		st.IsActive = c.schedule.IsActive
		st.BreakStart = c.schedule.BreakStart
		st.BreakEnd = c.schedule.BreakEnd
	}
	if st.State != StateOnline {
		st.IsOnline = false
	}
	return st
}

// ClearPrompt acknowledges the pending prompt.
func (c *Controller) ClearPrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = nil
}

func (c *Controller) stateForLocked(now time.Time) State {
	if c.schedule == nil || c.schedule.Date != now.Format(dateLayout) || !c.schedule.IsActive {
		return StateNoSchedule
	}
	startMin, err1 := parseClock(c.schedule.StartTime)
	endMin, err2 := parseClock(c.schedule.EndTime)
	if err1 != nil || err2 != nil {
		return StateNoSchedule
	}

	nowMin := now.Hour()*60 + now.Minute()
	if endMin > startMin {
		if nowMin < startMin {
			return StatePending
		}
		if nowMin >= endMin {
			return StateExpired
		}
	} else {
		// End wrapped past midnight via an extension.
		if nowMin < startMin && nowMin >= endMin {
			return StateExpired
		}
	}
	if c.online {
		return StateOnline
	}
	return StateActiveOffline
}

func (c *Controller) inWindowLocked(now time.Time) bool {
	switch c.stateForLocked(now) {
	case StateOnline, StateActiveOffline:
		return true
	}
	return false
}

func (c *Controller) emitLocked(e Event) {
	c.prompt = &e
	if c.notify != nil {
		c.notify(e)
	}
}

// persistScheduleLocked writes the schedule with bounded retry. Failures
// surface as a sync warning; local state is already applied and stays.
func (c *Controller) persistScheduleLocked(ctx context.Context) {
	c.persistLocked(ctx, "save schedule", func() error {
		return c.store.SaveSchedule(ctx, c.schedule)
	})
}

func (c *Controller) persistAvailabilityLocked(ctx context.Context, available bool) {
	date := ""
	if c.schedule != nil {
		date = c.schedule.Date
	}
	c.persistLocked(ctx, "save availability", func() error {
		return c.store.SaveAvailability(ctx, c.doctorID, date, available)
	})
}

func (c *Controller) persistLocked(ctx context.Context, op string, save func() error) {
	var err error
	for attempt := 1; attempt <= c.saveAttempts; attempt++ {
		if err = save(); err == nil {
			c.syncWarning = ""
			return
		}
		if attempt < c.saveAttempts && c.saveBackoff > 0 {
			time.Sleep(time.Duration(attempt) * c.saveBackoff)
		}
	}

	syncErr := &SyncError{Op: op, Attempts: c.saveAttempts, Err: err}
	c.syncWarning = syncErr.Error()
	if c.notify != nil {
		c.notify(Event{
			Type:     EventSyncFailed,
			DoctorID: c.doctorID,
			Message:  "Changes saved locally but could not be synced to the server. They will reconcile on the next successful load.",
			At:       c.clock.Now(),
		})
	}
}
