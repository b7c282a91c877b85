package history

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMarkPosted_NoDuplicates(t *testing.T) {
	h := New()
	h.MarkPosted("t1", "a")
	h.MarkPosted("t1", "b")
	h.MarkPosted("t1", "a")

	if got := h.Posted("t1"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestPosted_ReturnsCopy(t *testing.T) {
	h := New()
	h.MarkPosted("t1", "a")

	got := h.Posted("t1")
	got[0] = "mutated"

	if h.Posted("t1")[0] != "a" {
		t.Error("Posted must not expose internal state")
	}
}

func TestBindDestination(t *testing.T) {
	h := New()

	if err := h.BindDestination("t1", "d1"); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	if err := h.BindDestination("t1", "d1"); err != nil {
		t.Errorf("rebinding the same id should succeed: %v", err)
	}

	err := h.BindDestination("t1", "d2")
	if !errors.Is(err, ErrDestinationRebind) {
		t.Errorf("expected ErrDestinationRebind, got %v", err)
	}
	if dest, _ := h.Destination("t1"); dest != "d1" {
		t.Errorf("destination changed to %s", dest)
	}

	if err := h.BindDestination("t2", ""); err == nil {
		t.Error("expected error for empty destination id")
	}
}

func TestForgetCount(t *testing.T) {
	h := New()
	h.SetCount("t1", 12)
	h.SetCount("t2", 4)
	h.MarkPosted("t2", "a")

	h.ForgetCount("t1")
	h.ForgetCount("t2")
	h.ForgetCount("missing")

	if _, ok := h.LastCount("t1"); ok {
		t.Error("expected t1 count to be forgotten")
	}
	if _, ok := h.Record("t1"); ok {
		t.Error("expected empty t1 record to be pruned")
	}
	if _, ok := h.Record("t2"); !ok {
		t.Error("t2 still has posted answers and must be kept")
	}
}

func TestStats(t *testing.T) {
	h := New()
	h.SetCount("t1", 3)
	h.SetCount("t2", 7)
	h.MarkPosted("t2", "a")
	h.MarkPosted("t2", "b")
	h.MarkPosted("t3", "c")

	scanned, withAnswers, answers := h.Stats()
	if scanned != 2 || withAnswers != 2 || answers != 3 {
		t.Errorf("unexpected stats: scanned=%d withAnswers=%d answers=%d", scanned, withAnswers, answers)
	}
}

func sampleDocument() Document {
	doc := NewDocument()
	doc.Scanned["t1"] = 12
	doc.Scanned["t2"] = 0
	doc.Posted["t1"] = []string{"c3", "c1", "c2"}
	doc.Posted["t2"] = []string{}
	doc.PostIDs["t1"] = "t3_dest1"
	return doc
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument()

	got := FromDocument(doc).Document()
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", doc, got)
	}
}

func TestJSONStore_InitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewJSONStore(path)

	h, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Threads()) != 0 {
		t.Errorf("expected empty history, got %v", h.Threads())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected history file to be created: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("created file is not JSON: %v", err)
	}
	for _, key := range []string{"scanned", "posted", "post_ids"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("expected key %q in empty document", key)
		}
	}
}

func TestStores_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		open func() (Store, error)
	}{
		{"json", func() (Store, error) { return Open("json", filepath.Join(dir, "history.json")) }},
		{"sqlite", func() (Store, error) { return Open("sqlite", filepath.Join(dir, "history.db")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleDocument()

			store, err := tt.open()
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if err := store.Save(ctx, FromDocument(want)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			_ = store.Close()

			store, err = tt.open()
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer store.Close()

			h, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got := h.Document(); !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
			}

			// A second save must fully replace the first snapshot
			h.ForgetCount("t2")
			h.MarkPosted("t1", "c4")
			if err := store.Save(ctx, h); err != nil {
				t.Fatalf("second Save failed: %v", err)
			}
			h2, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("second Load failed: %v", err)
			}
			if got := h2.Posted("t1"); !reflect.DeepEqual(got, []string{"c3", "c1", "c2", "c4"}) {
				t.Errorf("unexpected posted order: %v", got)
			}
			if _, ok := h2.LastCount("t2"); ok {
				t.Error("expected t2 count to be gone after second save")
			}
		})
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Error("expected error for unsupported store type")
	}
}

func TestReadOnly_DiscardsSaves(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	base := NewJSONStore(path)

	h := New()
	h.SetCount("t1", 3)
	if err := base.Save(ctx, h); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ro := ReadOnly(base)
	h.SetCount("t1", 9)
	if err := ro.Save(ctx, h); err != nil {
		t.Fatalf("read-only Save failed: %v", err)
	}

	loaded, err := ro.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if count, _ := loaded.LastCount("t1"); count != 3 {
		t.Errorf("expected stored count 3, got %d", count)
	}
}

func TestReadOnly_DoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h, err := ReadOnly(NewJSONStore(path)).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Threads()) != 0 {
		t.Errorf("expected empty history, got %v", h.Threads())
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("read-only load must not create the history file: %v", err)
	}
}

func TestOpenReadOnly(t *testing.T) {
	ctx := context.Background()

	for _, storeType := range []string{"json", "sqlite"} {
		t.Run(storeType, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history."+storeType)

			store, err := OpenReadOnly(storeType, path)
			if err != nil {
				t.Fatalf("OpenReadOnly failed: %v", err)
			}
			h, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			h.SetCount("t1", 4)
			if err := store.Save(ctx, h); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			_ = store.Close()

			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("history file must not be created: %v", err)
			}
		})
	}

	if _, err := OpenReadOnly("redis", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected error for unsupported store type")
	}
}

func TestOpenReadOnly_ReadsExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	base, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := base.Save(ctx, FromDocument(sampleDocument())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = base.Close()

	store, err := OpenReadOnly("sqlite", path)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer store.Close()

	h, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dest, _ := h.Destination("t1"); dest != "t3_dest1" {
		t.Errorf("expected stored destination, got %q", dest)
	}
}
