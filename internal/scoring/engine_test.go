package scoring

import (
	"reflect"
	"testing"
)

func TestMatchSingleChallenge(t *testing.T) {
	t.Parallel()

	result := Match([]string{"I miss enquiries or forget to reply"})

	if len(result.MatchedTemplates) != 1 {
		t.Fatalf("expected 1 matched template, got %d", len(result.MatchedTemplates))
	}

	entry := result.MatchedTemplates[0]
	if entry.Category != "enquiry_capture" {
		t.Fatalf("unexpected category: %s", entry.Category)
	}
	if entry.Urgency != UrgencyHigh {
		t.Fatalf("unexpected urgency: %s", entry.Urgency)
	}
	if entry.TemplateSlug != "multi_channel_enquiry_capture" {
		t.Fatalf("unexpected primary template: %s", entry.TemplateSlug)
	}
	if result.TotalValue != 2500 {
		t.Fatalf("expected total value 2500, got %.0f", result.TotalValue)
	}
}

func TestMatchUnknownChallengeDroppedSilently(t *testing.T) {
	t.Parallel()

	result := Match([]string{"This is not a real challenge"})

	if len(result.MatchedTemplates) != 0 {
		t.Fatalf("expected no matches, got %d", len(result.MatchedTemplates))
	}
	if result.TotalValue != 0 {
		t.Fatalf("expected zero value, got %.0f", result.TotalValue)
	}
}

func TestMatchMixedKnownUnknown(t *testing.T) {
	t.Parallel()

	result := Match([]string{
		"Quotes take too long to send",
		"made-up nonsense",
		"Chasing payments is awkward",
	})

	if len(result.MatchedTemplates) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.MatchedTemplates))
	}
	if result.TotalValue != 5000 {
		t.Fatalf("expected total value 5000, got %.0f", result.TotalValue)
	}
}

func TestMatchThreeChallenges(t *testing.T) {
	t.Parallel()

	result := Match([]string{
		"I miss enquiries or forget to reply",
		"Quotes take too long to send",
		"I don't have time to chase people",
	})

	if result.TotalValue != 8000 {
		t.Fatalf("expected total value 8000, got %.0f", result.TotalValue)
	}
	if result.Complexity != ComplexityMedium {
		t.Fatalf("expected medium complexity, got %s", result.Complexity)
	}
	if len(result.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(result.Categories))
	}
}

func TestMatchEmptyInput(t *testing.T) {
	t.Parallel()

	result := Match(nil)

	if len(result.MatchedTemplates) != 0 || result.TotalValue != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.EstimatedWeeks != 1 {
		t.Fatalf("expected 1 week floor, got %d", result.EstimatedWeeks)
	}
}

func TestMatchUrgencyOrderingIsStable(t *testing.T) {
	t.Parallel()

	input := []string{
		"Customers keep messaging for updates",     // low
		"I don't have time to chase people",        // medium
		"I forget to invoice or invoice late",      // high
		"I lose track of jobs once they're booked", // medium
		"I miss enquiries or forget to reply",      // high
	}

	first := Match(input)
	second := Match(input)

	if first.MatchedTemplates[0].Urgency != UrgencyHigh {
		t.Fatalf("expected a high urgency entry first, got %s", first.MatchedTemplates[0].Urgency)
	}

	// Equal urgency keeps submission order: invoicing was declared before
	// enquiry capture, chasing before job tracking.
	if first.MatchedTemplates[0].Category != "invoicing" {
		t.Fatalf("unexpected first entry: %s", first.MatchedTemplates[0].Category)
	}
	if first.MatchedTemplates[1].Category != "enquiry_capture" {
		t.Fatalf("unexpected second entry: %s", first.MatchedTemplates[1].Category)
	}
	if first.MatchedTemplates[2].Category != "follow_up" {
		t.Fatalf("unexpected third entry: %s", first.MatchedTemplates[2].Category)
	}
	if first.MatchedTemplates[4].Urgency != UrgencyLow {
		t.Fatalf("expected low urgency last, got %s", first.MatchedTemplates[4].Urgency)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("matching the same input twice produced different results")
	}
}

func TestComplexityTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		numChallenges int
		numCategories int
		totalValue    float64
		want          string
	}{
		{2, 1, 2500, ComplexitySimple},
		{4, 3, 5000, ComplexityMedium},
		{7, 5, 12000, ComplexityComplex},
		{1, 1, 100, ComplexitySimple},
		{6, 4, 7001, ComplexityComplex},
	}

	for _, tc := range cases {
		got := Complexity(tc.numChallenges, tc.numCategories, tc.totalValue)
		if got != tc.want {
			t.Fatalf("Complexity(%d, %d, %.0f) = %s, want %s",
				tc.numChallenges, tc.numCategories, tc.totalValue, got, tc.want)
		}
	}
}

func TestEstimateHoursTruncates(t *testing.T) {
	t.Parallel()

	matched := Match([]string{
		"Quotes take too long to send",        // 3500
		"I miss enquiries or forget to reply", // 2500
	}).MatchedTemplates

	hours := EstimateHours(matched)
	// 6000 / 125 * 1.2 = 57.6, truncated.
	if hours != 57 {
		t.Fatalf("expected 57 hours, got %d", hours)
	}
	if hours < 50 || hours > 65 {
		t.Fatalf("hours %d outside expected range", hours)
	}
}

func TestEstimateWeeksBufferedByComplexity(t *testing.T) {
	t.Parallel()

	complexWeeks := EstimateWeeks(48, ComplexityComplex)
	simpleWeeks := EstimateWeeks(48, ComplexitySimple)

	if complexWeeks <= simpleWeeks {
		t.Fatalf("expected complex (%d) > simple (%d)", complexWeeks, simpleWeeks)
	}

	if EstimateWeeks(24, ComplexityComplex) < EstimateWeeks(24, ComplexitySimple) {
		t.Fatal("complexity buffer must never shorten the estimate")
	}

	if EstimateWeeks(0, ComplexitySimple) != 1 {
		t.Fatal("expected minimum of one week")
	}
}
