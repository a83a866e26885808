package domain

import (
	"encoding/json"
	"strings"
)

// ResultType classifies a learning resource.
type ResultType string

// Known result types.
const (
	ResultTypeVideo             ResultType = "Video"
	ResultTypeGame              ResultType = "Game"
	ResultTypeInteractiveLesson ResultType = "Interactive Lesson"
	ResultTypeWorksheet         ResultType = "Worksheet"
	ResultTypeLesson            ResultType = "Lesson"
	ResultTypeOther             ResultType = "Other"
)

// ParseResultType maps free text from a connector or the relevance filter
// onto a known type. Unrecognised values become ResultTypeOther.
func ParseResultType(s string) ResultType {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "video", "videos":
		return ResultTypeVideo
	case "game", "games":
		return ResultTypeGame
	case "interactivelesson", "interactive", "interactivelessons", "simulation":
		return ResultTypeInteractiveLesson
	case "worksheet", "worksheets", "pdf":
		return ResultTypeWorksheet
	case "lesson", "lessons":
		return ResultTypeLesson
	default:
		return ResultTypeOther
	}
}

// UnmarshalJSON normalises the decoded string through ParseResultType.
func (t *ResultType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ResultTypeOther
		return nil //nolint:nilerr // null and non-string types decode as Other
	}
	*t = ParseResultType(s)
	return nil
}

// ResultItem is a single candidate learning resource.
// It is a value type compared structurally and never mutated after creation.
type ResultItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Image       string     `json:"image"`
	Type        ResultType `json:"type"`
}

// Concat joins result slices in order, returning a non-nil slice.
func Concat(groups ...[]ResultItem) []ResultItem {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]ResultItem, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
