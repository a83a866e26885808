package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GradeFilter restricts a search to a single grade level, or to all grades.
// The zero value means all grades.
type GradeFilter int

// Grade bounds and defaults.
const (
	GradeAll     GradeFilter = 0
	MinGrade     GradeFilter = 1
	MaxGrade     GradeFilter = 12
	DefaultGrade GradeFilter = 5
)

// ParseGrade parses a grade parameter. An empty value yields DefaultGrade,
// "all" yields GradeAll, and anything else must be an integer in 1..12.
func ParseGrade(s string) (GradeFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultGrade, nil
	}
	if strings.EqualFold(s, "all") {
		return GradeAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: grade %q is not a number", ErrInvalidInput, s)
	}
	g := GradeFilter(n)
	if !g.IsValid() || g == GradeAll {
		return 0, fmt.Errorf("%w: grade %d out of range %d-%d", ErrInvalidInput, n, MinGrade, MaxGrade)
	}
	return g, nil
}

// IsValid reports whether g is GradeAll or within the supported range.
func (g GradeFilter) IsValid() bool {
	return g == GradeAll || (g >= MinGrade && g <= MaxGrade)
}

// IsAll reports whether the filter matches every grade.
func (g GradeFilter) IsAll() bool {
	return g == GradeAll
}

// String returns "all" or the decimal grade.
func (g GradeFilter) String() string {
	if g.IsAll() {
		return "all"
	}
	return strconv.Itoa(int(g))
}

// Phrase returns "for grade N", or an empty string for all grades.
func (g GradeFilter) Phrase() string {
	if g.IsAll() {
		return ""
	}
	return "for grade " + strconv.Itoa(int(g))
}

// MarshalJSON encodes GradeAll as "all" and other grades as numbers.
func (g GradeFilter) MarshalJSON() ([]byte, error) {
	if g.IsAll() {
		return []byte(`"all"`), nil
	}
	return []byte(strconv.Itoa(int(g))), nil
}

// UnmarshalJSON accepts a number, a numeric string, or "all".
func (g *GradeFilter) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed := GradeFilter(n)
		if !parsed.IsValid() {
			return fmt.Errorf("%w: grade %d out of range", ErrInvalidInput, n)
		}
		*g = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: grade must be a number or \"all\"", ErrInvalidInput)
	}
	parsed, err := ParseGrade(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
