package domain

import (
	"github.com/google/uuid"
)

// StudyState is the single keyed per-user record owned by the study engine:
// the mastery aggregate, the streak, the append-only session history, the
// active session slot, per-flashcard review state, and quiz results. It is
// persisted as one record per user; serialization is a storage concern.
type StudyState struct {
	Progress       *StudyProgress            `json:"progress"`
	Streak         StudyStreak               `json:"streak"`
	ActiveSession  *StudySession             `json:"active_session,omitempty"`
	SessionHistory []StudySession            `json:"session_history"`
	Flashcards     map[uuid.UUID]ReviewState `json:"flashcard_state"`
	QuizScores     []QuizScore               `json:"quiz_scores"`
	TotalStudyTime int64                     `json:"total_study_time"` // seconds
}

// NewStudyState creates an empty study state for a new user.
func NewStudyState() *StudyState {
	return &StudyState{
		Progress:       NewStudyProgress(),
		SessionHistory: []StudySession{},
		Flashcards:     make(map[uuid.UUID]ReviewState),
		QuizScores:     []QuizScore{},
	}
}

// Normalize fills in nil collections after deserialization so callers can
// rely on the maps and slices being present.
func (s *StudyState) Normalize() {
	if s.Progress == nil {
		s.Progress = NewStudyProgress()
	}
	if s.Progress.TopicsMastery == nil {
		s.Progress.TopicsMastery = make(map[string]TopicMastery)
	}
	if s.SessionHistory == nil {
		s.SessionHistory = []StudySession{}
	}
	if s.Flashcards == nil {
		s.Flashcards = make(map[uuid.UUID]ReviewState)
	}
	if s.QuizScores == nil {
		s.QuizScores = []QuizScore{}
	}
}

// Clone returns a deep copy of the study state.
func (s *StudyState) Clone() *StudyState {
	clone := &StudyState{
		Progress:       s.Progress.Clone(),
		Streak:         s.Streak,
		SessionHistory: make([]StudySession, len(s.SessionHistory)),
		Flashcards:     make(map[uuid.UUID]ReviewState, len(s.Flashcards)),
		QuizScores:     append([]QuizScore{}, s.QuizScores...),
		TotalStudyTime: s.TotalStudyTime,
	}
	if s.ActiveSession != nil {
		clone.ActiveSession = s.ActiveSession.Clone()
	}
	for i := range s.SessionHistory {
		clone.SessionHistory[i] = *s.SessionHistory[i].Clone()
	}
	for id, state := range s.Flashcards {
		clone.Flashcards[id] = state
	}
	return clone
}
