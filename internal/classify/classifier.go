package classify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/answermirror/internal/model"
)

// Reason identifies which rule decided a verdict
type Reason int

const (
	Accepted Reason = iota
	SkippedPlaceholder
	SkippedRemoved
	SkippedDistinguished
	SkippedTooShort
	SkippedTooYoung
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case SkippedPlaceholder:
		return "placeholder"
	case SkippedRemoved:
		return "removed"
	case SkippedDistinguished:
		return "distinguished"
	case SkippedTooShort:
		return "too_short"
	case SkippedTooYoung:
		return "too_young"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of classifying one comment.
// Actual and Min are set for SkippedTooShort (characters) and SkippedTooYoung (minutes).
type Verdict struct {
	Reason Reason
	Actual int
	Min    int
}

// Accepted reports whether the comment qualifies as an answer
func (v Verdict) Accepted() bool {
	return v.Reason == Accepted
}

// String renders a human-readable skip reason
func (v Verdict) String() string {
	switch v.Reason {
	case Accepted:
		return "Answer"
	case SkippedPlaceholder:
		return "MoreComments"
	case SkippedRemoved:
		return "Removed"
	case SkippedDistinguished:
		return "Distinguished"
	case SkippedTooShort:
		return fmt.Sprintf("Under Minimum Length (%d of %d chars)", v.Actual, v.Min)
	case SkippedTooYoung:
		return fmt.Sprintf("Under Minimum Age (%d of %d minutes)", v.Actual, v.Min)
	default:
		return v.Reason.String()
	}
}

// RemovedFunc reports whether a comment body is a removal marker left by the forum
type RemovedFunc func(c model.Comment) bool

// BodyLength matches bodies of exactly n characters. The forum replaces
// removed and deleted bodies with "[removed]" and "[deleted]", both 9 long.
func BodyLength(n int) RemovedFunc {
	return func(c model.Comment) bool {
		return utf8.RuneCountInString(c.Body) == n
	}
}

// BodyMarker matches bodies equal to one of the given markers
func BodyMarker(markers ...string) RemovedFunc {
	return func(c model.Comment) bool {
		body := strings.TrimSpace(c.Body)
		for _, m := range markers {
			if body == m {
				return true
			}
		}
		return false
	}
}

// Classifier decides whether a top-level comment is an answer
type Classifier struct {
	minChars int
	minAge   int // whole minutes
	removed  RemovedFunc
}

// New creates a classifier. A nil removed predicate disables the removal check.
func New(minChars int, minAge time.Duration, removed RemovedFunc) *Classifier {
	return &Classifier{
		minChars: minChars,
		minAge:   int(minAge / time.Minute),
		removed:  removed,
	}
}

// FromConfig builds a classifier from configuration
func FromConfig(cfg model.ClassifierConfig) (*Classifier, error) {
	var removed RemovedFunc
	switch strings.ToLower(cfg.RemovedCheck) {
	case "", "length":
		n := cfg.RemovedBodyLength
		if n <= 0 {
			n = 9
		}
		removed = BodyLength(n)
	case "marker":
		removed = BodyMarker("[removed]", "[deleted]")
	case "none":
		removed = nil
	default:
		return nil, fmt.Errorf("unknown removed_check %q (supported: length, marker, none)", cfg.RemovedCheck)
	}
	return New(cfg.MinChars, cfg.MinAge, removed), nil
}

// Classify evaluates c at time now.
//
// Placeholders and removed bodies short-circuit. The remaining rules are all
// evaluated and the last one to fire is reported.
func (cl *Classifier) Classify(c model.Comment, now time.Time) Verdict {
	if c.Placeholder {
		return Verdict{Reason: SkippedPlaceholder}
	}

	if cl.removed != nil && cl.removed(c) {
		return Verdict{Reason: SkippedRemoved}
	}

	verdict := Verdict{Reason: Accepted}

	if c.Distinguished {
		verdict = Verdict{Reason: SkippedDistinguished}
	}

	if length := utf8.RuneCountInString(c.Body); length < cl.minChars {
		verdict = Verdict{Reason: SkippedTooShort, Actual: length, Min: cl.minChars}
	}

	if age := AgeMinutes(c.CreatedUTC, now); age < cl.minAge {
		verdict = Verdict{Reason: SkippedTooYoung, Actual: age, Min: cl.minAge}
	}

	return verdict
}

// AgeMinutes returns floor((now - created) / 1 minute)
func AgeMinutes(created, now time.Time) int {
	seconds := now.Sub(created).Seconds()
	minutes := int(seconds / 60)
	if seconds < 0 && float64(minutes*60) != seconds {
		minutes-- // floor, not truncation, for timestamps in the future
	}
	return minutes
}
