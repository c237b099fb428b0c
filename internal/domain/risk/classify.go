package risk

import "fmt"

// Instrument identifies one of the two screening questionnaires.
type Instrument string

const (
	PHQ9 Instrument = "PHQ-9" // 9 items, score 0-27
	GAD7 Instrument = "GAD-7" // 7 items, score 0-21
)

const (
	PHQ9MaxScore = 27
	GAD7MaxScore = 21

	PHQ9Items = 9
	GAD7Items = 7

	// MaxItemAnswer is the highest value a single questionnaire item
	// can take ("nearly every day").
	MaxItemAnswer = 3

	// phq9SelfHarmItem is the 1-based index of the PHQ-9 self-harm item.
	phq9SelfHarmItem = 9

	// Severe-case escalation thresholds. Independent of the tier
	// classification: a screening meeting any of these is flagged severe
	// even when the computed level is lower.
	phq9SevereCaseScore = 20
	gad7SevereCaseScore = 15
)

// InvalidScoreError reports a score outside the instrument's valid range.
type InvalidScoreError struct {
	Instrument Instrument
	Score      int
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid %s score %d: must be between 0 and %d",
		e.Instrument, e.Score, maxScore(e.Instrument))
}

func maxScore(i Instrument) int {
	if i == GAD7 {
		return GAD7MaxScore
	}
	return PHQ9MaxScore
}

// Classify maps a raw questionnaire score to its risk tier. Out-of-range
// scores are an error, never clamped.
func Classify(instrument Instrument, score int) (Level, error) {
	switch instrument {
	case PHQ9:
		if score < 0 || score > PHQ9MaxScore {
			return "", &InvalidScoreError{Instrument: PHQ9, Score: score}
		}
		switch {
		case score <= 4:
			return Minimal, nil
		case score <= 9:
			return Mild, nil
		case score <= 14:
			return Moderate, nil
		case score <= 19:
			return ModeratelySevere, nil
		default:
			return Severe, nil
		}
	case GAD7:
		if score < 0 || score > GAD7MaxScore {
			return "", &InvalidScoreError{Instrument: GAD7, Score: score}
		}
		// GAD-7 has no moderately-severe tier.
		switch {
		case score <= 4:
			return Minimal, nil
		case score <= 9:
			return Mild, nil
		case score <= 14:
			return Moderate, nil
		default:
			return Severe, nil
		}
	default:
		return "", fmt.Errorf("unknown instrument %q", instrument)
	}
}

// SevereCase reports whether a screening requires escalation regardless
// of its computed tiers: PHQ-9 score of 20+, GAD-7 score of 15+, or any
// nonzero answer on the PHQ-9 self-harm item. Advisory metadata
// alongside the overall risk, not a replacement for it.
func SevereCase(phq9Score, gad7Score int, phq9Answers []int) bool {
	if phq9Score >= phq9SevereCaseScore || gad7Score >= gad7SevereCaseScore {
		return true
	}
	if len(phq9Answers) >= phq9SelfHarmItem && phq9Answers[phq9SelfHarmItem-1] > 0 {
		return true
	}
	return false
}
