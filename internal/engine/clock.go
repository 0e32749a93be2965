package engine

import "time"

// Clock supplies the current timestamp. It is injected so tests can pin
// time and exercise the calendar-sensitive streak and scheduling logic.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewClock returns a Clock backed by the system time, in UTC.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
