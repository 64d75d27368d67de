package schedule

import "sort"

// TopicRating is one learner self-assessment: 0 = weak, 0.5 = soso,
// 1 = familiar.
type TopicRating struct {
	Topic    string
	Weakness float64
}

// WeaknessFromLabel maps the swipe labels to their numeric weakness.
// Unknown labels fall back to 0 (treated as weak), same as an unrated topic.
func WeaknessFromLabel(label string) float64 {
	switch label {
	case "familiar":
		return 1.0
	case "soso":
		return 0.5
	default:
		return 0.0
	}
}

// RatingIndex maps topics to weakness scores. Topics the learner never rated
// default to 0.0, i.e. maximal study priority; that default is deliberate
// and observable through Unrated.
type RatingIndex struct {
	weights map[string]float64
}

// NewRatingIndex builds the index. Last write wins on duplicate topics.
func NewRatingIndex(ratings []TopicRating) *RatingIndex {
	weights := make(map[string]float64, len(ratings))
	for _, r := range ratings {
		weights[r.Topic] = r.Weakness
	}
	return &RatingIndex{weights: weights}
}

func (ix *RatingIndex) WeaknessOf(topic string) float64 {
	if w, ok := ix.weights[topic]; ok {
		return w
	}
	return 0.0
}

func (ix *RatingIndex) Rated(topic string) bool {
	_, ok := ix.weights[topic]
	return ok
}

// Unrated returns, sorted, the subset of topics that would fall back to the
// default weakness.
func (ix *RatingIndex) Unrated(topics []string) []string {
	var out []string
	for _, t := range topics {
		if !ix.Rated(t) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// WeeklyBudget is the minutes per week a topic earns from its weakness:
// weak topics get 3 hours, soso topics 2, familiar topics none.
func WeeklyBudget(weakness float64) int {
	switch {
	case weakness < 0.25:
		return 180
	case weakness < 0.75:
		return 120
	default:
		return 0
	}
}
