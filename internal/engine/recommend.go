package engine

import (
	"sort"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// RecommendTopics ranks practiced topics as focus areas: topics with at
// least one recorded outcome, excluding those already classified as strong,
// sorted ascending by mastery percentage with ties broken by topic key so
// the ordering is deterministic. Returns an empty slice when no topic
// qualifies.
//
// This is a pure read over the mastery aggregate; nothing is cached or
// mutated.
func RecommendTopics(progress *domain.StudyProgress) []string {
	topics := make([]string, 0, len(progress.TopicsMastery))
	for topic, mastery := range progress.TopicsMastery {
		if mastery.Total == 0 || progress.IsStrong(topic) {
			continue
		}
		topics = append(topics, topic)
	}

	sort.Slice(topics, func(i, j int) bool {
		pi := progress.TopicsMastery[topics[i]].MasteryPercent()
		pj := progress.TopicsMastery[topics[j]].MasteryPercent()
		if pi != pj {
			return pi < pj
		}
		return topics[i] < topics[j]
	})

	return topics
}
