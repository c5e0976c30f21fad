package stage

import "testing"

func TestParseStructuredDirect(t *testing.T) {
	t.Parallel()

	content, err := parseStructured(`{"complexity": "medium", "lead_score": 72}`)
	if err != nil {
		t.Fatalf("parseStructured returned error: %v", err)
	}
	if content["complexity"] != "medium" {
		t.Fatalf("unexpected content: %v", content)
	}
}

func TestParseStructuredJSONFence(t *testing.T) {
	t.Parallel()

	text := "Here is the analysis you asked for:\n```json\n{\"lead_score\": 85}\n```\nLet me know if you need anything else."
	content, err := parseStructured(text)
	if err != nil {
		t.Fatalf("parseStructured returned error: %v", err)
	}
	if content["lead_score"] != float64(85) {
		t.Fatalf("unexpected content: %v", content)
	}
}

func TestParseStructuredBareFence(t *testing.T) {
	t.Parallel()

	text := "```\n{\"workflows\": []}\n```"
	content, err := parseStructured(text)
	if err != nil {
		t.Fatalf("parseStructured returned error: %v", err)
	}
	if _, ok := content["workflows"]; !ok {
		t.Fatalf("unexpected content: %v", content)
	}
}

func TestParseStructuredFailure(t *testing.T) {
	t.Parallel()

	if _, err := parseStructured("I could not produce JSON today, sorry."); err == nil {
		t.Fatal("expected error for prose response")
	}
}
