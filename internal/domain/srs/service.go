package srs

import (
	"errors"
	"time"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// Common errors
var (
	ErrInvalidCounts = errors.New("review state counters are invalid")
)

// Service defines the interface for review scheduling operations.
type Service interface {
	// ApplyReview computes the review state that results from answering the
	// item at the given time. The input state is never mutated.
	ApplyReview(
		state domain.ReviewState,
		correct bool,
		now time.Time,
	) (domain.ReviewState, error)

	// IsDue reports whether the item is due for review at the given time.
	IsDue(state domain.ReviewState, now time.Time) bool
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ApplyReview implements the Service interface.
func (s *defaultService) ApplyReview(
	state domain.ReviewState,
	correct bool,
	now time.Time,
) (domain.ReviewState, error) {
	if state.ReviewCount < 0 || state.CorrectCount < 0 || state.CorrectCount > state.ReviewCount {
		return domain.ReviewState{}, ErrInvalidCounts
	}

	return calculateNextState(state, correct, now, s.params), nil
}

// IsDue implements the Service interface.
func (s *defaultService) IsDue(state domain.ReviewState, now time.Time) bool {
	return IsDue(state, now)
}
