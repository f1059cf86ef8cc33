package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"xpeak/internal/engine"
)

func breakdownPrompt(title string) string {
	return fmt.Sprintf(`Break the goal %q into 2 to 6 categories of concrete tasks.
Respond with JSON only: an array of objects {"title": string, "tasks": [{"name": string, "difficulty": "EASY"|"MEDIUM"|"HARD"|"EPIC", "skillCategory": "PHYSICAL"|"MENTAL"|"PROFESSIONAL"|"SOCIAL"|"CREATIVE"}]}.`, title)
}

func suggestPrompt(prompt string) string {
	return fmt.Sprintf(`Suggest up to 5 tasks for: %q.
Respond with JSON only: an array of objects {"title": string, "description": string, "difficulty": "EASY"|"MEDIUM"|"HARD"|"EPIC", "skillCategory": "PHYSICAL"|"MENTAL"|"PROFESSIONAL"|"SOCIAL"|"CREATIVE", "isHabit": boolean}.`, prompt)
}

// ParseBreakdown decodes a model response into quest categories. Unknown
// fields and anything but a non-empty array are rejected with
// engine.ErrInvalidBreakdown.
func ParseBreakdown(text string) ([]engine.BreakdownCategory, error) {
	var cats []engine.BreakdownCategory
	if err := decodeStrict(text, &cats); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidBreakdown, err)
	}
	if err := engine.ValidateBreakdown(cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ParseSuggestions decodes a model response into standalone task suggestions.
func ParseSuggestions(text string) ([]engine.SuggestedTask, error) {
	var out []engine.SuggestedTask
	if err := decodeStrict(text, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidBreakdown, err)
	}
	return out, nil
}

func decodeStrict(text string, v any) error {
	body := stripFence(strings.TrimSpace(text))
	if body == "" {
		return fmt.Errorf("empty response")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after json")
	}
	return nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
