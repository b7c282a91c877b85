package reconcile

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ppiankov/answermirror/internal/history"
	"github.com/ppiankov/answermirror/internal/model"
)

func comments(ids ...string) []model.Comment {
	out := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Comment{ID: id})
	}
	return out
}

func ids(cs []model.Comment) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestReconcile_Example(t *testing.T) {
	h := history.New()
	for _, id := range []string{"a", "b", "c"} {
		h.MarkPosted("t1", id)
	}

	res := Reconcile("t1", comments("b", "d"), h)

	if got := ids(res.New); !reflect.DeepEqual(got, []string{"d"}) {
		t.Errorf("expected new [d], got %v", got)
	}
	if !reflect.DeepEqual(res.StillPresent, []string{"b"}) {
		t.Errorf("expected still present [b], got %v", res.StillPresent)
	}
	if !reflect.DeepEqual(res.Vanished, []string{"a", "c"}) {
		t.Errorf("expected vanished [a c], got %v", res.Vanished)
	}
	if got := h.Posted("t1"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Reconcile must not modify history, got %v", got)
	}
}

func TestReconcile_FirstScan(t *testing.T) {
	res := Reconcile("t1", comments("x", "y"), history.New())

	if got := ids(res.New); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("expected all answers new, got %v", got)
	}
	if len(res.StillPresent) != 0 || len(res.Vanished) != 0 {
		t.Errorf("expected nothing present or vanished, got %+v", res)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	h := history.New()
	current := comments("a", "b")

	first := Reconcile("t1", current, h)
	for _, c := range first.New {
		h.MarkPosted("t1", c.ID)
	}

	second := Reconcile("t1", current, h)
	if len(second.New) != 0 {
		t.Errorf("expected no new answers on second pass, got %v", ids(second.New))
	}
	if len(second.Vanished) != 0 {
		t.Errorf("expected no vanished answers, got %v", second.Vanished)
	}
	if !reflect.DeepEqual(second.StillPresent, []string{"a", "b"}) {
		t.Errorf("unexpected still present: %v", second.StillPresent)
	}
}

func TestReconcile_StillPresentInSourceOrder(t *testing.T) {
	h := history.New()
	for _, id := range []string{"a", "b", "c"} {
		h.MarkPosted("t1", id)
	}

	res := Reconcile("t1", comments("c", "x", "a"), h)

	if !reflect.DeepEqual(res.StillPresent, []string{"c", "a"}) {
		t.Errorf("expected still present [c a], got %v", res.StillPresent)
	}
	if !reflect.DeepEqual(res.Vanished, []string{"b"}) {
		t.Errorf("expected vanished [b], got %v", res.Vanished)
	}
}

func TestReconcile_DuplicateCurrent(t *testing.T) {
	res := Reconcile("t1", comments("a", "a"), history.New())
	if len(res.New) != 1 {
		t.Errorf("expected duplicate answer counted once, got %v", ids(res.New))
	}
}

func TestGate(t *testing.T) {
	rules := Rules{MetaFlairs: []string{"meta", "feature"}, MetaTitleMarker: "[meta]"}

	tests := []struct {
		name  string
		post  model.SourcePost
		prior int // -1 means never scanned
		want  SkipReason
	}{
		{"fresh post", model.SourcePost{ID: "p", NumComments: 4}, -1, NotSkipped},
		{"count changed", model.SourcePost{ID: "p", NumComments: 5}, 4, NotSkipped},
		{"flair meta", model.SourcePost{ID: "p", Flair: "META", NumComments: 4}, -1, SkipMeta},
		{"flair feature", model.SourcePost{ID: "p", Flair: "Feature", NumComments: 4}, -1, SkipMeta},
		{"title marker", model.SourcePost{ID: "p", Title: "[Meta] Rules update", NumComments: 4}, -1, SkipMeta},
		{"distinguished", model.SourcePost{ID: "p", Distinguished: true, NumComments: 4}, -1, SkipMod},
		{"no comments", model.SourcePost{ID: "p"}, -1, SkipEmpty},
		{"unchanged", model.SourcePost{ID: "p", NumComments: 7}, 7, SkipSame},
		{"later reason wins", model.SourcePost{ID: "p", Flair: "meta", Distinguished: true, NumComments: 3}, 3, SkipSame},
		{"distinguished overrides meta", model.SourcePost{ID: "p", Flair: "meta", Distinguished: true, NumComments: 3}, -1, SkipMod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := history.New()
			if tt.prior >= 0 {
				h.SetCount(tt.post.ID, tt.prior)
			}

			d := Gate(tt.post, h, rules)
			if d.Reason != tt.want {
				t.Errorf("expected %q, got %q", tt.want, d.Reason)
			}
			if d.Scan() != (tt.want == NotSkipped) {
				t.Errorf("Scan() = %v for reason %q", d.Scan(), d.Reason)
			}

			count, ok := h.LastCount(tt.post.ID)
			if !ok || count != tt.post.NumComments {
				t.Errorf("expected count %d recorded, got %d (%v)", tt.post.NumComments, count, ok)
			}
		})
	}
}

func TestDestinationTitle_Short(t *testing.T) {
	got := DestinationTitle("Why did Rome fall?", "curious", 300)
	want := `Answers for "Why did Rome fall?" (/u/curious)`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDestinationTitle_Truncated(t *testing.T) {
	title := strings.Repeat("w", 400)
	got := DestinationTitle(title, "someone", 300)

	if n := utf8.RuneCountInString(got); n != 300 {
		t.Errorf("expected exactly 300 characters, got %d", n)
	}
	if !strings.Contains(got, `..." (/u/someone)`) {
		t.Errorf("expected ellipsis before the author, got %q", got)
	}
	if !strings.HasPrefix(got, `Answers for "www`) {
		t.Errorf("unexpected prefix: %q", got[:20])
	}
}

func TestDestinationTitle_ExactLimit(t *testing.T) {
	author := "a"
	title := strings.Repeat("t", 300-titleFixed-len(author))
	got := DestinationTitle(title, author, 300)
	if strings.Contains(got, "...") {
		t.Errorf("title at the limit must not be trimmed: %q", got)
	}
}

func TestDestinationTitle_Multibyte(t *testing.T) {
	title := strings.Repeat("ü", 350)
	got := DestinationTitle(title, "x", 300)
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multibyte character")
	}
	if n := utf8.RuneCountInString(got); n != 300 {
		t.Errorf("expected 300 characters, got %d", n)
	}
}

func TestDestinationTitle_LongAuthor(t *testing.T) {
	got := DestinationTitle("title", strings.Repeat("n", 400), 300)
	if n := utf8.RuneCountInString(got); n != 300 {
		t.Errorf("expected 300 characters, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title must end with an ellipsis: %q", got)
	}
	if !strings.HasPrefix(got, `Answers for "title" (/u/nnn`) {
		t.Errorf("unexpected title prefix: %q", got[:40])
	}
}
