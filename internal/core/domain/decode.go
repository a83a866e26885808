package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	openingJSONFence = regexp.MustCompile("(?i)^```json\\s*")
	openingFence     = regexp.MustCompile("^```\\s*")
	closingFence     = regexp.MustCompile("```$")
)

// Decoded is the outcome of decoding a model response. Items is never nil.
// Err wraps ErrFilterParse when the text was not a JSON array.
type Decoded struct {
	Items []ResultItem
	Err   error
}

// OK reports whether decoding succeeded.
func (d Decoded) OK() bool {
	return d.Err == nil
}

// DecodeResults parses free-form model text into result items.
// Markdown code fences around the payload are removed. Blank text decodes to
// an empty list.
func DecodeResults(text string) Decoded {
	body := StripFences(text)
	if body == "" {
		return Decoded{Items: []ResultItem{}}
	}

	var items []ResultItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return Decoded{
			Items: []ResultItem{},
			Err:   fmt.Errorf("%w: %w", ErrFilterParse, err),
		}
	}
	if items == nil {
		items = []ResultItem{}
	}
	return Decoded{Items: items}
}

// StripFences removes a leading ```json or ``` fence and a trailing ``` fence.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	s = openingJSONFence.ReplaceAllString(s, "")
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
