package memory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/lobug/internal/core"
)

type ExtractedFact struct {
	Text string
	Type core.FactType
}

type rawFact struct {
	Fact string `json:"fact"`
	Type string `json:"type"`
}

// ParseFacts reads the extraction model's JSON array. Markdown fences are
// stripped; prose around a single array is tolerated. Elements that are not
// objects or carry no fact text are skipped. Anything else that is not an
// array yields core.ErrMalformedOutput.
func ParseFacts(raw string) ([]ExtractedFact, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty output", core.ErrMalformedOutput)
	}

	items, err := decodeArray(text)
	if err != nil {
		if json.Valid([]byte(text)) {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedOutput, err)
		}
		inner := extractJSONArray(text)
		if inner == "" {
			return nil, fmt.Errorf("%w: no JSON array found", core.ErrMalformedOutput)
		}
		if items, err = decodeArray(inner); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedOutput, err)
		}
	}

	facts := make([]ExtractedFact, 0, len(items))
	for _, item := range items {
		var rf rawFact
		if err := json.Unmarshal(item, &rf); err != nil {
			continue
		}
		t := strings.TrimSpace(rf.Fact)
		if t == "" {
			continue
		}
		facts = append(facts, ExtractedFact{Text: t, Type: core.NormalizeFactType(rf.Type)})
	}
	return facts, nil
}

func decodeArray(text string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.Contains(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(content, "]")
	if end < start {
		return ""
	}
	return content[start : end+1]
}
