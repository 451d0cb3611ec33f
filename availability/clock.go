package availability

import "time"

// Clock is the wall-clock source sampled by the controller. Injectable so
// tests can drive transitions deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
