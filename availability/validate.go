package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseClock converts an "HH:MM" wall-clock string to minutes after
// midnight.
func parseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hours*60 + minutes, nil
}

func formatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidateWindow checks a (start, end) schedule pair. It enforces the
// 30-minute minimum duration, or one hour when firstSetup is set.
func ValidateWindow(start, end string, firstSetup bool) *Error {
	if start == "" || end == "" {
		return newError(CodeInvalidTimeRange, "both start time and end time are required")
	}
	startMin, err := parseClock(start)
	if err != nil {
		return newError(CodeInvalidTimeRange, "invalid start time: %v", err)
	}
	endMin, err := parseClock(end)
	if err != nil {
		return newError(CodeInvalidTimeRange, "invalid end time: %v", err)
	}
	if endMin <= startMin {
		return newError(CodeInvalidTimeRange, "end time %s must be after start time %s", end, start)
	}

	minimum := MinScheduleDuration
	if firstSetup {
		minimum = MinFirstSetupDuration
	}
	if time.Duration(endMin-startMin)*time.Minute < minimum {
		return newError(CodeDurationTooShort,
			"schedule must be at least %d minutes long, got %d",
			int(minimum.Minutes()), endMin-startMin)
	}
	return nil
}

// ValidateBreak checks that an enabled break lies inside the schedule
// window.
func ValidateBreak(start, end string, breakStart, breakEnd *string) *Error {
	if breakStart == nil || breakEnd == nil || *breakStart == "" || *breakEnd == "" {
		return newError(CodeBreakOutsideSchedule, "break start and end times are required when a break is enabled")
	}
	startMin, err := parseClock(start)
	if err != nil {
		return newError(CodeInvalidTimeRange, "invalid start time: %v", err)
	}
	endMin, err := parseClock(end)
	if err != nil {
		return newError(CodeInvalidTimeRange, "invalid end time: %v", err)
	}
	bStart, err := parseClock(*breakStart)
	if err != nil {
		return newError(CodeBreakOutsideSchedule, "invalid break start time: %v", err)
	}
	bEnd, err := parseClock(*breakEnd)
	if err != nil {
		return newError(CodeBreakOutsideSchedule, "invalid break end time: %v", err)
	}
	if bEnd <= bStart {
		return newError(CodeBreakOutsideSchedule, "break end must be after break start")
	}
	if bStart < startMin || bEnd > endMin {
		return newError(CodeBreakOutsideSchedule,
			"break %s-%s must fall within the schedule window %s-%s",
			*breakStart, *breakEnd, start, end)
	}
	return nil
}
