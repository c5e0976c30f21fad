// Package scoring is the deterministic rule engine that maps a submission's
// declared challenges to priced workflow templates and derives the project's
// value, complexity tier, and effort estimates. Pure functions only: no I/O,
// no state, stable across re-runs of the same input.
package scoring

import (
	"sort"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
)

// Urgency tiers ordered high > medium > low.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// Complexity tiers.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

const (
	hourlyRate         = 125.0
	integrationFactor  = 1.2
	effectiveWeekHours = 24.0
)

var urgencyRank = map[string]int{
	UrgencyHigh:   3,
	UrgencyMedium: 2,
	UrgencyLow:    1,
}

// Result is the outcome of matching a challenge list against the template
// table. Exactly one Result exists per pipeline run and is treated as
// immutable context for every stage.
type Result struct {
	MatchedTemplates []domain.MatchedTemplate
	TotalValue       float64
	Complexity       string
	EstimatedHours   int
	EstimatedWeeks   int
	Categories       []string
}

// Match maps the submitted challenges to workflow templates and prices the
// project. Unknown challenge strings are dropped silently; an empty input
// yields an empty result with zero value. Matched entries are ordered by
// urgency descending, with input order breaking ties.
func Match(challenges []string) Result {
	matched := make([]domain.MatchedTemplate, 0, len(challenges))
	var totalValue float64
	seen := map[string]struct{}{}
	categories := make([]string, 0, len(challenges))

	for _, challenge := range challenges {
		mapping, ok := challengeMappings[challenge]
		if !ok {
			continue
		}

		var primary string
		if len(mapping.Templates) > 0 {
			primary = mapping.Templates[0]
		}

		matched = append(matched, domain.MatchedTemplate{
			Challenge:    challenge,
			Category:     mapping.Category,
			Urgency:      mapping.Urgency,
			BasePrice:    mapping.BasePrice,
			TemplateSlug: primary,
			AllTemplates: mapping.Templates,
		})

		totalValue += mapping.BasePrice
		if _, ok := seen[mapping.Category]; !ok {
			seen[mapping.Category] = struct{}{}
			categories = append(categories, mapping.Category)
		}
	}

	complexity := Complexity(len(challenges), len(categories), totalValue)

	sort.SliceStable(matched, func(i, j int) bool {
		return urgencyRank[matched[i].Urgency] > urgencyRank[matched[j].Urgency]
	})

	hours := EstimateHours(matched)
	weeks := EstimateWeeks(hours, complexity)

	return Result{
		MatchedTemplates: matched,
		TotalValue:       totalValue,
		Complexity:       complexity,
		EstimatedHours:   hours,
		EstimatedWeeks:   weeks,
		Categories:       categories,
	}
}

// Complexity rates the project from three sub-scores in {1,2,3}: challenge
// count, category diversity, and total value. The average of the three
// selects the tier.
func Complexity(numChallenges, numCategories int, totalValue float64) string {
	score := 0

	switch {
	case numChallenges >= 6:
		score += 3
	case numChallenges >= 3:
		score += 2
	default:
		score++
	}

	switch {
	case numCategories >= 4:
		score += 3
	case numCategories >= 2:
		score += 2
	default:
		score++
	}

	switch {
	case totalValue > 7000:
		score += 3
	case totalValue > 3000:
		score += 2
	default:
		score++
	}

	avg := float64(score) / 3

	switch {
	case avg >= 2.5:
		return ComplexityComplex
	case avg >= 1.5:
		return ComplexityMedium
	default:
		return ComplexitySimple
	}
}

// EstimateHours derives effort from pricing: roughly one hour per £125,
// plus 20% integration overhead. Truncates to whole hours.
func EstimateHours(matched []domain.MatchedTemplate) int {
	var totalPrice float64
	for _, t := range matched {
		totalPrice += t.BasePrice
	}
	return int(totalPrice / hourlyRate * integrationFactor)
}

// EstimateWeeks converts hours to calendar weeks at ~24 effective hours a
// week, buffered by complexity. Never below one week.
func EstimateWeeks(estimatedHours int, complexity string) int {
	baseWeeks := float64(estimatedHours) / effectiveWeekHours

	switch complexity {
	case ComplexityComplex:
		baseWeeks *= 1.3
	case ComplexityMedium:
		baseWeeks *= 1.2
	default:
		baseWeeks *= 1.1
	}

	weeks := int(baseWeeks + 0.5)
	if weeks < 1 {
		return 1
	}
	return weeks
}

// Context freezes a Result into the read-only bundle shared by all stages.
func (r Result) Context() domain.RunContext {
	return domain.RunContext{
		MatchedTemplates: r.MatchedTemplates,
		TotalValue:       r.TotalValue,
		Complexity:       r.Complexity,
		EstimatedHours:   r.EstimatedHours,
		EstimatedWeeks:   r.EstimatedWeeks,
		Categories:       r.Categories,
	}
}
