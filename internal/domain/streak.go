package domain

import "time"

// StudyStreak counts consecutive calendar days containing at least one
// started session. Current never exceeds Longest; a gap of more than one
// calendar day resets Current to 1, not 0, because the session that
// observed the gap itself counts as a study day.
type StudyStreak struct {
	Current       int       `json:"current"`
	Longest       int       `json:"longest"`
	LastStudyDate time.Time `json:"last_study_date"` // day granularity, UTC
}

// Advance computes the streak that results from starting a session at the
// given time. It follows the immutable update pattern: the receiver is not
// modified and a new streak value is returned.
//
// Rules, comparing the date portion of now to LastStudyDate:
//   - same calendar day: unchanged (aside from the date stamp)
//   - exactly one calendar day later: Current+1
//   - gap of more than one day, or no prior date: Current resets to 1
//
// Longest is raised to Current whenever Current grows, and LastStudyDate is
// always set to the date of now.
func (s StudyStreak) Advance(now time.Time) StudyStreak {
	today := DateOf(now)

	next := s
	next.LastStudyDate = today

	switch {
	case s.LastStudyDate.IsZero():
		next.Current = 1
	case today.Equal(s.LastStudyDate):
		return next
	case daysBetween(s.LastStudyDate, today) == 1:
		next.Current = s.Current + 1
	default:
		next.Current = 1
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next
}

// DateOf truncates a timestamp to day granularity in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole calendar days from a to b.
// Both arguments must already be day-truncated UTC times.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
