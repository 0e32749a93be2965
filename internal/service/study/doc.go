// Package study orchestrates per-user study engines over persistent storage.
// It loads each user's aggregate state on first use, keeps a live engine per
// user, and routes session, answer, review, note, and quiz operations through
// the engine so every mutation is tracked and persisted.
package study
