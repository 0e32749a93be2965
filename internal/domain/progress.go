package domain

import (
	"sort"
	"time"
)

// Mastery classification thresholds, in percent. A topic below the weak
// threshold is a weak area, a topic above the strong threshold is a strong
// area, and everything between is neutral.
const (
	WeakMasteryThreshold   = 60.0
	StrongMasteryThreshold = 80.0
)

// Classification is the derived weak/strong standing of a topic.
type Classification string

// Possible classification values. ClassificationNone applies to topics with
// no recorded outcomes.
const (
	ClassificationNone    Classification = "none"
	ClassificationWeak    Classification = "weak"
	ClassificationNeutral Classification = "neutral"
	ClassificationStrong  Classification = "strong"
)

// TopicMastery maintains correct/total counters for a single topic.
// Counters never decrease; every increment to Total is paired with a
// decision on whether to increment Correct.
type TopicMastery struct {
	Correct       int       `json:"correct"`
	Total         int       `json:"total"`
	LastPracticed time.Time `json:"last_practiced"`
}

// MasteryPercent derives the mastery percentage for the topic.
// A topic with no recorded outcomes has 0% mastery.
func (m TopicMastery) MasteryPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Correct) / float64(m.Total) * 100
}

// Classify maps a topic's mastery counters to its weak/strong standing.
// This is a pure function so the incremental reclassification done by
// StudyProgress.RecordOutcome is independently testable.
func Classify(m TopicMastery) Classification {
	if m.Total == 0 {
		return ClassificationNone
	}

	percent := m.MasteryPercent()
	switch {
	case percent < WeakMasteryThreshold:
		return ClassificationWeak
	case percent > StrongMasteryThreshold:
		return ClassificationStrong
	default:
		return ClassificationNeutral
	}
}

// StudyProgress is the long-lived per-user mastery aggregate. It tracks
// global answer counters, per-topic mastery, and the derived weak/strong
// area sets. The weak and strong sets are mutually exclusive and are
// updated incrementally, one topic at a time, as outcomes are recorded.
type StudyProgress struct {
	TotalQuestions int                     `json:"total_questions"`
	CorrectAnswers int                     `json:"correct_answers"`
	TopicsMastery  map[string]TopicMastery `json:"topics_mastery"`
	WeakAreas      []string                `json:"weak_areas"`
	StrongAreas    []string                `json:"strong_areas"`
}

// NewStudyProgress creates an empty progress aggregate.
func NewStudyProgress() *StudyProgress {
	return &StudyProgress{
		TopicsMastery: make(map[string]TopicMastery),
		WeakAreas:     []string{},
		StrongAreas:   []string{},
	}
}

// RecordOutcome increments the topic's total counter (creating the entry if
// absent) and its correct counter when the outcome was correct, stamps the
// topic's last-practiced time, and reclassifies that topic only. Other
// topics' weak/strong standing is untouched, which keeps every answer an
// O(1) update rather than a full rescan.
//
// Returns the updated mastery entry for the topic.
func (p *StudyProgress) RecordOutcome(topic string, correct bool, now time.Time) TopicMastery {
	if p.TopicsMastery == nil {
		p.TopicsMastery = make(map[string]TopicMastery)
	}

	p.TotalQuestions++
	if correct {
		p.CorrectAnswers++
	}

	mastery := p.TopicsMastery[topic]
	mastery.Total++
	if correct {
		mastery.Correct++
	}
	mastery.LastPracticed = now
	p.TopicsMastery[topic] = mastery

	p.reclassify(topic, Classify(mastery))

	return mastery
}

// reclassify moves the topic into the area set matching its classification,
// removing it from the other. The sets stay sorted so serialized state and
// snapshots are deterministic.
func (p *StudyProgress) reclassify(topic string, class Classification) {
	p.WeakAreas = removeTopic(p.WeakAreas, topic)
	p.StrongAreas = removeTopic(p.StrongAreas, topic)

	switch class {
	case ClassificationWeak:
		p.WeakAreas = insertTopic(p.WeakAreas, topic)
	case ClassificationStrong:
		p.StrongAreas = insertTopic(p.StrongAreas, topic)
	}
}

// IsWeak reports whether the topic is currently classified as a weak area.
func (p *StudyProgress) IsWeak(topic string) bool {
	return containsTopic(p.WeakAreas, topic)
}

// IsStrong reports whether the topic is currently classified as a strong area.
func (p *StudyProgress) IsStrong(topic string) bool {
	return containsTopic(p.StrongAreas, topic)
}

// Clone returns a deep copy of the progress aggregate.
func (p *StudyProgress) Clone() *StudyProgress {
	clone := &StudyProgress{
		TotalQuestions: p.TotalQuestions,
		CorrectAnswers: p.CorrectAnswers,
		TopicsMastery:  make(map[string]TopicMastery, len(p.TopicsMastery)),
		WeakAreas:      append([]string{}, p.WeakAreas...),
		StrongAreas:    append([]string{}, p.StrongAreas...),
	}
	for topic, mastery := range p.TopicsMastery {
		clone.TopicsMastery[topic] = mastery
	}
	return clone
}

func containsTopic(topics []string, topic string) bool {
	i := sort.SearchStrings(topics, topic)
	return i < len(topics) && topics[i] == topic
}

func insertTopic(topics []string, topic string) []string {
	i := sort.SearchStrings(topics, topic)
	if i < len(topics) && topics[i] == topic {
		return topics
	}
	topics = append(topics, "")
	copy(topics[i+1:], topics[i:])
	topics[i] = topic
	return topics
}

func removeTopic(topics []string, topic string) []string {
	i := sort.SearchStrings(topics, topic)
	if i < len(topics) && topics[i] == topic {
		return append(topics[:i], topics[i+1:]...)
	}
	return topics
}
