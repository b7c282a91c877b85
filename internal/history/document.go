package history

// Document is the persisted form of a History
type Document struct {
	Scanned map[string]int      `json:"scanned"`  // Thread id -> comment count at last scan
	Posted  map[string][]string `json:"posted"`   // Thread id -> mirrored answer ids
	PostIDs map[string]string   `json:"post_ids"` // Thread id -> destination post id
}

// NewDocument returns an empty document with non-nil maps
func NewDocument() Document {
	return Document{
		Scanned: make(map[string]int),
		Posted:  make(map[string][]string),
		PostIDs: make(map[string]string),
	}
}

// FromDocument builds a History from its persisted form
func FromDocument(doc Document) *History {
	h := New()
	for id, count := range doc.Scanned {
		h.SetCount(id, count)
	}
	for id, answers := range doc.Posted {
		r := h.record(id)
		r.Posted = append([]string{}, answers...)
	}
	for id, dest := range doc.PostIDs {
		if dest == "" {
			continue
		}
		h.record(id).DestinationID = dest
	}
	return h
}

// Document returns the persisted form of h
func (h *History) Document() Document {
	doc := NewDocument()
	for id, r := range h.records {
		if r.Scanned {
			doc.Scanned[id] = r.CommentCount
		}
		if r.Posted != nil {
			doc.Posted[id] = append([]string{}, r.Posted...)
		}
		if r.DestinationID != "" {
			doc.PostIDs[id] = r.DestinationID
		}
	}
	return doc
}
