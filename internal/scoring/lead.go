package scoring

import "strings"

var teamSizeScores = map[string]int{
	"Just me":     15,
	"2-3 people":  20,
	"4-6 people":  22,
	"7-10 people": 25,
	"11+ people":  25,
}

var urgencyKeywords = []string{"urgent", "asap", "immediately", "losing", "miss", "forget"}

var revenueKeywords = []string{"revenue", "sales", "money", "profit", "growth", "expanding"}

// LeadScore rates submission quality in [0,100] from four independently
// capped components: team size, challenge count, note keywords, and project
// value. Keyword matching is case-insensitive substring containment.
func LeadScore(teamSize string, numChallenges int, notes string, revenueValue float64) int {
	score := 0

	if points, ok := teamSizeScores[teamSize]; ok {
		score += points
	} else {
		score += 15
	}

	switch {
	case numChallenges >= 7:
		score += 30
	case numChallenges >= 5:
		score += 25
	case numChallenges >= 3:
		score += 20
	default:
		score += 15
	}

	if notes != "" {
		lower := strings.ToLower(notes)
		score += capped(countContained(lower, urgencyKeywords)*3, 10)
		score += capped(countContained(lower, revenueKeywords)*3, 10)
	}

	switch {
	case revenueValue >= 10000:
		score += 25
	case revenueValue >= 7000:
		score += 22
	case revenueValue >= 5000:
		score += 18
	case revenueValue >= 3000:
		score += 15
	default:
		score += 10
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func countContained(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}

func capped(value, limit int) int {
	if value > limit {
		return limit
	}
	return value
}
