// Package srs implements the spaced-repetition review scheduler: a pure
// function from (current review state, outcome, time) to the next review
// state. Intervals grow linearly with the review count after correct
// outcomes, capped at a maximum, and reset to a short lapse interval after
// incorrect outcomes.
package srs

import (
	"time"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// calculateInterval determines the next interval in days for an item with
// the given (already incremented) review count.
//
// On a correct outcome the interval is reviewCount * GrowthFactorDays,
// capped at MaxIntervalDays. On an incorrect outcome the interval resets to
// LapseIntervalDays regardless of prior history.
func calculateInterval(reviewCount int, correct bool, params *Params) int {
	if !correct {
		return params.LapseIntervalDays
	}

	interval := reviewCount * params.GrowthFactorDays
	if interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}
	return interval
}

// calculateNextState creates a new ReviewState with updated values based on
// the review outcome. The input state is not modified; identical inputs
// always produce identical outputs.
func calculateNextState(
	state domain.ReviewState,
	correct bool,
	now time.Time,
	params *Params,
) domain.ReviewState {
	next := state

	next.ReviewCount++
	if correct {
		next.CorrectCount++
	}

	interval := calculateInterval(next.ReviewCount, correct, params)
	next.LastReviewed = now
	next.NextReview = now.AddDate(0, 0, interval)

	return next
}

// IsDue reports whether the item is due for review at the given time.
// Unseen items have a zero NextReview and are due immediately.
func IsDue(state domain.ReviewState, now time.Time) bool {
	return !now.Before(state.NextReview)
}
