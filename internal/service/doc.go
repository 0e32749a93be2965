// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// Key components:
//   - study: per-user study engines, session lifecycle, notes, flashcards
//     and review scheduling
//   - auth: JWT issuing/validation and password verification
package service
