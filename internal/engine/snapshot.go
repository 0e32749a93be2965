package engine

import (
	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// Snapshot is a read-only copy of the engine's aggregate state, safe to
// hand to rendering layers. Mutating a snapshot never affects the engine.
type Snapshot struct {
	Progress       *domain.StudyProgress `json:"progress"`
	Streak         domain.StudyStreak    `json:"streak"`
	ActiveSession  *domain.StudySession  `json:"active_session,omitempty"`
	SessionHistory []domain.StudySession `json:"session_history"`
	QuizScores     []domain.QuizScore    `json:"quiz_scores"`
	TotalStudyTime int64                 `json:"total_study_time"`
}

// snapshotLocked builds a snapshot. Callers must hold e.mu.
func (e *Engine) snapshotLocked() *Snapshot {
	clone := e.state.Clone()
	return &Snapshot{
		Progress:       clone.Progress,
		Streak:         clone.Streak,
		ActiveSession:  clone.ActiveSession,
		SessionHistory: clone.SessionHistory,
		QuizScores:     clone.QuizScores,
		TotalStudyTime: clone.TotalStudyTime,
	}
}
