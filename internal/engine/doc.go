// Package engine implements the study progress and scheduling engine: a
// per-user state container owning session lifecycle, mastery accounting,
// spaced-repetition review state, streak computation, and topic
// recommendations. External collaborators interact with it only through the
// Engine facade; every mutating call is atomic with respect to a single
// caller and is followed by a scoped save of the aggregate state.
package engine
