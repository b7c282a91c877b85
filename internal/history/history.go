package history

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDestinationRebind is returned when a thread already mirrors into a different destination post
var ErrDestinationRebind = errors.New("destination post already bound")

// ScanRecord is the persisted state of one source thread
type ScanRecord struct {
	Scanned       bool     // CommentCount is meaningful
	CommentCount  int      // Comment count seen at the last scan
	Posted        []string // Mirrored answer ids in discovery order
	DestinationID string   // Destination post, empty until the first answer is found
}

// History maps source thread ids to their scan records.
// It is not safe for concurrent use.
type History struct {
	records map[string]*ScanRecord
}

// New returns an empty history
func New() *History {
	return &History{records: make(map[string]*ScanRecord)}
}

func (h *History) record(threadID string) *ScanRecord {
	r, ok := h.records[threadID]
	if !ok {
		r = &ScanRecord{}
		h.records[threadID] = r
	}
	return r
}

// Record returns a copy of the record for threadID
func (h *History) Record(threadID string) (ScanRecord, bool) {
	r, ok := h.records[threadID]
	if !ok {
		return ScanRecord{}, false
	}
	cp := *r
	if r.Posted != nil {
		cp.Posted = append([]string{}, r.Posted...)
	}
	return cp, true
}

// LastCount returns the comment count recorded at the last scan
func (h *History) LastCount(threadID string) (int, bool) {
	r, ok := h.records[threadID]
	if !ok || !r.Scanned {
		return 0, false
	}
	return r.CommentCount, true
}

// SetCount records the current comment count of a thread
func (h *History) SetCount(threadID string, count int) {
	r := h.record(threadID)
	r.Scanned = true
	r.CommentCount = count
}

// ForgetCount drops the recorded count so the thread is rescanned next cycle
func (h *History) ForgetCount(threadID string) {
	r, ok := h.records[threadID]
	if !ok {
		return
	}
	r.Scanned = false
	r.CommentCount = 0
	h.prune(threadID)
}

// Posted returns a copy of the mirrored answer ids for threadID
func (h *History) Posted(threadID string) []string {
	r, ok := h.records[threadID]
	if !ok {
		return nil
	}
	return append([]string{}, r.Posted...)
}

// MarkPosted appends answerID to the thread's posted sequence if absent
func (h *History) MarkPosted(threadID, answerID string) {
	r := h.record(threadID)
	for _, id := range r.Posted {
		if id == answerID {
			return
		}
	}
	r.Posted = append(r.Posted, answerID)
}

// Destination returns the destination post bound to threadID
func (h *History) Destination(threadID string) (string, bool) {
	r, ok := h.records[threadID]
	if !ok || r.DestinationID == "" {
		return "", false
	}
	return r.DestinationID, true
}

// BindDestination binds a destination post to threadID. Rebinding to the same
// id is a no-op; rebinding to a different id fails.
func (h *History) BindDestination(threadID, destinationID string) error {
	if destinationID == "" {
		return fmt.Errorf("bind destination for %s: empty destination id", threadID)
	}
	r := h.record(threadID)
	if r.DestinationID != "" && r.DestinationID != destinationID {
		return fmt.Errorf("thread %s bound to %s, refusing %s: %w", threadID, r.DestinationID, destinationID, ErrDestinationRebind)
	}
	r.DestinationID = destinationID
	return nil
}

// Threads returns all known thread ids, sorted
func (h *History) Threads() []string {
	ids := make([]string, 0, len(h.records))
	for id := range h.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stats returns the number of scanned threads, threads with mirrored answers and total answers
func (h *History) Stats() (scanned, withAnswers, answers int) {
	for _, r := range h.records {
		if r.Scanned {
			scanned++
		}
		if r.Posted != nil {
			withAnswers++
		}
		answers += len(r.Posted)
	}
	return scanned, withAnswers, answers
}

// prune removes records that no longer hold any state
func (h *History) prune(threadID string) {
	r := h.records[threadID]
	if r != nil && !r.Scanned && r.Posted == nil && r.DestinationID == "" {
		delete(h.records, threadID)
	}
}
