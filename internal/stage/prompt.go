package stage

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderExpr = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// formatPrompt substitutes {name} placeholders from vars. A placeholder with
// no matching variable is an error, never left in place.
func formatPrompt(template string, vars map[string]string) (string, error) {
	var missing []string

	out := placeholderExpr.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("prompt template references missing variables: %s", strings.Join(missing, ", "))
	}

	return out, nil
}

// numberedList renders items as "1. item" lines.
func numberedList(items []string) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(lines, "\n")
}

// bulletedList renders items as "- item" lines.
func bulletedList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

// categoryTitle turns a category slug like "enquiry_capture" into
// "Enquiry Capture".
func categoryTitle(slug string) string {
	words := strings.Split(slug, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "None provided"
	}
	return value
}
