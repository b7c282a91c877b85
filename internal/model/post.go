package model

import "time"

// SourcePost is a snapshot of a monitored thread taken during one poll cycle
type SourcePost struct {
	ID            string `json:"id"` // Thread id without the kind prefix (e.g. "1abcde")
	Title         string `json:"title"`
	Author        string `json:"author"`
	Flair         string `json:"flair,omitempty"` // Link flair text, empty when unset
	Distinguished bool   `json:"distinguished"`   // Posted by a moderator/admin in an official capacity
	NumComments   int    `json:"num_comments"`
	Permalink     string `json:"permalink,omitempty"`  // Absolute URL of the thread
	ShortLink     string `json:"short_link,omitempty"` // Short URL used in destination posts
}

// Comment is a snapshot of a top-level comment.
//
// Placeholder comments stand in for collapsed "load more comments" nodes and
// carry no author or body.
type Comment struct {
	ID            string    `json:"id"`
	Author        string    `json:"author,omitempty"`
	Body          string    `json:"body,omitempty"`
	CreatedUTC    time.Time `json:"created_utc"`
	Distinguished bool      `json:"distinguished"`
	Placeholder   bool      `json:"placeholder,omitempty"`
	Permalink     string    `json:"permalink,omitempty"`
}
