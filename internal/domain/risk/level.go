// Package risk classifies PHQ-9 and GAD-7 questionnaire scores into
// discrete clinical risk levels and derives the overall severity used
// for triage prioritization.
package risk

import (
	"fmt"
	"strings"
)

// Level is a discrete clinical risk tier, ordered by severity.
type Level string

const (
	Minimal          Level = "MINIMAL"
	Mild             Level = "MILD"
	Moderate         Level = "MODERATE"
	ModeratelySevere Level = "MODERATELY_SEVERE"
	Severe           Level = "SEVERE"
)

var weights = map[Level]int{
	Minimal:          0,
	Mild:             1,
	Moderate:         2,
	ModeratelySevere: 3,
	Severe:           4,
}

// Weight returns the sortable severity weight (0..4). Unknown levels
// weigh -1 so they sort below every valid tier.
func (l Level) Weight() int {
	w, ok := weights[l]
	if !ok {
		return -1
	}
	return w
}

// Valid reports whether l is one of the five known tiers.
func (l Level) Valid() bool {
	_, ok := weights[l]
	return ok
}

// ParseLevel normalizes an external risk-level tag into a Level. This is
// the single normalization boundary: internal code compares Levels
// directly and never re-normalizes.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown risk level %q", s)
	}
	return l, nil
}

// Overall returns the higher of the two levels. Equal levels return
// either (they are the same value).
func Overall(a, b Level) Level {
	if a.Weight() >= b.Weight() {
		return a
	}
	return b
}
