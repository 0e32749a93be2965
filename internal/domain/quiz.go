package domain

import "time"

// QuizScore records the result of one completed quiz for a topic.
// Quiz results are append-only history; the per-question outcomes also flow
// through the mastery counters.
type QuizScore struct {
	Topic string    `json:"topic"`
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}
