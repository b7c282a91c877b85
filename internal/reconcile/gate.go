package reconcile

import (
	"strings"

	"github.com/ppiankov/answermirror/internal/history"
	"github.com/ppiankov/answermirror/internal/model"
)

// SkipReason explains why a post was not scanned
type SkipReason string

const (
	NotSkipped SkipReason = ""
	SkipMeta   SkipReason = "Meta/Feature Post"
	SkipMod    SkipReason = "Distinguished Post"
	SkipEmpty  SkipReason = "No Comments"
	SkipSame   SkipReason = "No Change Since Last Scan"
)

// Rules configures which posts are treated as meta posts
type Rules struct {
	MetaFlairs      []string
	MetaTitleMarker string
}

// RulesFromConfig builds gate rules from the source config
func RulesFromConfig(cfg model.SourceConfig) Rules {
	return Rules{MetaFlairs: cfg.MetaFlairs, MetaTitleMarker: cfg.MetaTitleMarker}
}

// Decision is the outcome of gating one post
type Decision struct {
	Reason        SkipReason
	PreviousCount int
	HadPrevious   bool
}

// Scan reports whether the post should be scanned
func (d Decision) Scan() bool {
	return d.Reason == NotSkipped
}

// Gate decides whether post needs scanning and records its current comment
// count in h. Every check runs; the last one that matches is reported.
func Gate(post model.SourcePost, h *history.History, rules Rules) Decision {
	prev, ok := h.LastCount(post.ID)
	d := Decision{PreviousCount: prev, HadPrevious: ok}

	if rules.isMeta(post) {
		d.Reason = SkipMeta
	}
	if post.Distinguished {
		d.Reason = SkipMod
	}
	if post.NumComments == 0 {
		d.Reason = SkipEmpty
	}
	if ok && prev == post.NumComments {
		d.Reason = SkipSame
	}

	h.SetCount(post.ID, post.NumComments)
	return d
}

func (r Rules) isMeta(post model.SourcePost) bool {
	if post.Flair != "" {
		for _, f := range r.MetaFlairs {
			if strings.EqualFold(post.Flair, f) {
				return true
			}
		}
	}
	if r.MetaTitleMarker != "" &&
		strings.Contains(strings.ToLower(post.Title), strings.ToLower(r.MetaTitleMarker)) {
		return true
	}
	return false
}
