package reconcile

import (
	"github.com/ppiankov/answermirror/internal/history"
	"github.com/ppiankov/answermirror/internal/model"
)

// Result is the diff between the answers found now and the answers already mirrored
type Result struct {
	New          []model.Comment // Answers not yet mirrored, in source order
	StillPresent []string        // Mirrored answers that are still qualifying, in source order
	Vanished     []string        // Mirrored answers that no longer qualify or were deleted
}

// Reconcile compares the current qualifying answers of a thread with the
// answers recorded in h. It does not modify h.
func Reconcile(threadID string, current []model.Comment, h *history.History) Result {
	posted := h.Posted(threadID)

	known := make(map[string]bool, len(posted))
	for _, id := range posted {
		known[id] = true
	}

	var res Result
	present := make(map[string]bool, len(current))
	for _, c := range current {
		if present[c.ID] {
			continue
		}
		present[c.ID] = true
		if known[c.ID] {
			res.StillPresent = append(res.StillPresent, c.ID)
		} else {
			res.New = append(res.New, c)
		}
	}

	for _, id := range posted {
		if !present[id] {
			res.Vanished = append(res.Vanished, id)
		}
	}

	return res
}
