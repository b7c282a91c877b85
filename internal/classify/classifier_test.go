package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/answermirror/internal/model"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newDefault() *Classifier {
	return New(300, 30*time.Minute, BodyLength(9))
}

func answer(body string, age time.Duration) model.Comment {
	return model.Comment{
		ID:         "c1",
		Author:     "historian",
		Body:       body,
		CreatedUTC: now.Add(-age),
	}
}

func TestClassify_Accepted(t *testing.T) {
	cl := newDefault()

	for _, length := range []int{300, 301, 2000} {
		v := cl.Classify(answer(strings.Repeat("a", length), time.Hour), now)
		if !v.Accepted() {
			t.Errorf("length %d: expected Accepted, got %s", length, v)
		}
	}

	// Exactly at the age threshold
	v := cl.Classify(answer(strings.Repeat("a", 400), 30*time.Minute), now)
	if !v.Accepted() {
		t.Errorf("expected Accepted at exactly 30 minutes, got %s", v)
	}
}

func TestClassify_RemovedWinsOverEverything(t *testing.T) {
	cl := newDefault()

	cases := []model.Comment{
		answer("[removed]", time.Hour),
		answer("[deleted]", time.Minute),
		{ID: "x", Body: "123456789", Distinguished: true, CreatedUTC: now},
		{ID: "y", Body: "ééééééééé", CreatedUTC: now.Add(-48 * time.Hour)},
	}

	for _, c := range cases {
		v := cl.Classify(c, now)
		if v.Reason != SkippedRemoved {
			t.Errorf("body %q: expected SkippedRemoved, got %s", c.Body, v)
		}
	}
}

func TestClassify_TooYoung(t *testing.T) {
	cl := newDefault()

	v := cl.Classify(answer(strings.Repeat("a", 500), 29*time.Minute+59*time.Second), now)
	if v.Reason != SkippedTooYoung {
		t.Fatalf("expected SkippedTooYoung, got %s", v)
	}
	if v.Actual != 29 || v.Min != 30 {
		t.Errorf("expected 29 of 30 minutes, got %d of %d", v.Actual, v.Min)
	}
	if v.String() != "Under Minimum Age (29 of 30 minutes)" {
		t.Errorf("unexpected reason text: %s", v.String())
	}
}

func TestClassify_TooShort(t *testing.T) {
	cl := newDefault()

	v := cl.Classify(answer(strings.Repeat("a", 120), time.Hour), now)
	if v.Reason != SkippedTooShort {
		t.Fatalf("expected SkippedTooShort, got %s", v)
	}
	if v.String() != "Under Minimum Length (120 of 300 chars)" {
		t.Errorf("unexpected reason text: %s", v.String())
	}
}

func TestClassify_LengthCountsCharactersNotBytes(t *testing.T) {
	cl := newDefault()

	// 300 two-byte characters
	v := cl.Classify(answer(strings.Repeat("ж", 300), time.Hour), now)
	if !v.Accepted() {
		t.Errorf("expected Accepted for 300 characters, got %s", v)
	}
}

func TestClassify_LaterRuleOverridesForReporting(t *testing.T) {
	cl := newDefault()

	c := answer("short", time.Minute)
	c.Distinguished = true

	v := cl.Classify(c, now)
	if v.Reason != SkippedTooYoung {
		t.Errorf("expected the age rule to be reported last, got %s", v)
	}

	c = answer(strings.Repeat("a", 400), time.Hour)
	c.Distinguished = true
	v = cl.Classify(c, now)
	if v.Reason != SkippedDistinguished {
		t.Errorf("expected SkippedDistinguished, got %s", v)
	}
}

func TestClassify_Placeholder(t *testing.T) {
	cl := newDefault()

	placeholders := []model.Comment{
		{Placeholder: true},
		{ID: "more1", Placeholder: true, Body: "[removed]"},
		{ID: "more2", Placeholder: true, Distinguished: true},
	}

	for _, c := range placeholders {
		v := cl.Classify(c, now)
		if v.Reason != SkippedPlaceholder {
			t.Errorf("expected SkippedPlaceholder for %+v, got %s", c, v)
		}
	}
}

func TestClassify_NoRemovedPredicate(t *testing.T) {
	cl := New(5, 0, nil)

	v := cl.Classify(answer("[removed]", time.Hour), now)
	if !v.Accepted() {
		t.Errorf("expected Accepted with removal check disabled, got %s", v)
	}
}

func TestBodyMarker(t *testing.T) {
	removed := BodyMarker("[removed]", "[deleted]")

	if !removed(model.Comment{Body: " [deleted]\n"}) {
		t.Error("expected trimmed marker to match")
	}
	if removed(model.Comment{Body: "123456789"}) {
		t.Error("expected arbitrary 9-character body not to match")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := model.DefaultConfig().Classifier

	cl, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if cl.minChars != 300 || cl.minAge != 30 {
		t.Errorf("unexpected thresholds: %d chars, %d minutes", cl.minChars, cl.minAge)
	}

	cfg.RemovedCheck = "marker"
	cl, err = FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if v := cl.Classify(answer("123456789", time.Hour), now); v.Reason != SkippedTooShort {
		t.Errorf("expected marker check to ignore plain 9-character bodies, got %s", v)
	}

	cfg.RemovedCheck = "bogus"
	if _, err := FromConfig(cfg); err == nil {
		t.Error("expected error for unknown removed_check")
	}
}

func TestAgeMinutes(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want int
	}{
		{"zero", 0, 0},
		{"just under a minute", 59 * time.Second, 0},
		{"ninety seconds", 90 * time.Second, 1},
		{"over a day", 25 * time.Hour, 1500},
		{"future by 30s", -30 * time.Second, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeMinutes(now.Add(-tt.age), now); got != tt.want {
				t.Errorf("AgeMinutes(%v) = %d, want %d", tt.age, got, tt.want)
			}
		})
	}
}
