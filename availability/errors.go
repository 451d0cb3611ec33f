package availability

import "fmt"

// Error codes returned by schedule writes and online-status requests.
// Validation codes are resolved locally and never reach the database.
const (
	CodeInvalidTimeRange     = "INVALID_TIME_RANGE"
	CodeDurationTooShort     = "DURATION_TOO_SHORT"
	CodeBreakOutsideSchedule = "BREAK_OUTSIDE_SCHEDULE"
	CodeScheduleExists       = "SCHEDULE_EXISTS"
	CodeNoScheduleSet        = "NO_SCHEDULE_SET"
	CodeOutsideHours         = "OUTSIDE_SCHEDULED_HOURS"
	CodeScheduleInactive     = "SCHEDULE_INACTIVE"
	CodeInvalidExtension     = "INVALID_EXTENSION"
)

// Error is a rejected schedule operation. Message is human-readable and
// names the concrete reason, including the schedule window where relevant.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// SyncError reports a failed remote persistence attempt. The local state
// transition has already been applied; callers surface this as a warning
// rather than rolling back.
type SyncError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: sync failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
