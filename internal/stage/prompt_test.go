package stage

import (
	"strings"
	"testing"
)

func TestFormatPromptSubstitutes(t *testing.T) {
	t.Parallel()

	out, err := formatPrompt("Hello {name}, you run {business_name}.", map[string]string{
		"name":          "Dave",
		"business_name": "Oak & Sons",
	})
	if err != nil {
		t.Fatalf("formatPrompt returned error: %v", err)
	}
	if out != "Hello Dave, you run Oak & Sons." {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestFormatPromptMissingVariableFails(t *testing.T) {
	t.Parallel()

	_, err := formatPrompt("Timeline: {timeline_weeks} weeks", map[string]string{})
	if err == nil {
		t.Fatal("expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "timeline_weeks") {
		t.Fatalf("error should name the missing variable: %v", err)
	}
}

func TestFormatPromptLeavesJSONExamplesAlone(t *testing.T) {
	t.Parallel()

	template := `Output: {"tasks": [], "totalHours": {estimated_hours}}`
	out, err := formatPrompt(template, map[string]string{"estimated_hours": "57"})
	if err != nil {
		t.Fatalf("formatPrompt returned error: %v", err)
	}
	if out != `Output: {"tasks": [], "totalHours": 57}` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestStagePromptsResolveAllVariables(t *testing.T) {
	t.Parallel()

	// Every placeholder referenced by the shipped templates must be one the
	// stage actually supplies; a typo here would fail whole runs loudly.
	templates := map[string][]string{
		"analysis":   {"business_name", "client_name", "client_email", "team_size", "admin_method", "enquiry_sources", "challenges", "notes"},
		"proposal":   {"client_name", "business_name", "challenges", "systems", "total_value", "timeline_weeks"},
		"buildGuide": {"business_name", "client_name", "complexity", "estimated_hours", "timeline_weeks", "systems", "enquiry_sources", "admin_method"},
		"workflow":   {"business_name", "team_size", "enquiry_sources", "admin_method", "automations"},
		"dashboard":  {"business_name", "team_size", "workflows"},
		"tasks":      {"business_name", "complexity", "estimated_hours", "timeline_weeks", "challenges"},
	}
	texts := map[string]string{
		"analysis":   analysisPrompt,
		"proposal":   proposalPrompt,
		"buildGuide": buildGuidePrompt,
		"workflow":   workflowPrompt,
		"dashboard":  dashboardPrompt,
		"tasks":      taskBreakdownPrompt,
	}

	for name, vars := range templates {
		supplied := map[string]string{}
		for _, v := range vars {
			supplied[v] = "x"
		}
		if _, err := formatPrompt(texts[name], supplied); err != nil {
			t.Fatalf("%s template references unsupplied variables: %v", name, err)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	t.Parallel()

	if got := categoryTitle("enquiry_capture"); got != "Enquiry Capture" {
		t.Fatalf("unexpected title: %s", got)
	}
	if got := categoryTitle("reporting"); got != "Reporting" {
		t.Fatalf("unexpected title: %s", got)
	}
}
