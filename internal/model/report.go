package model

import "time"

// CycleReport summarises one poll cycle
type CycleReport struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Posts      int           `json:"posts"`       // Hot posts fetched
	Skipped    int           `json:"skipped"`     // Posts rejected by the gate
	Scanned    int           `json:"scanned"`     // Posts whose comments were scanned
	Failed     int           `json:"failed"`      // Posts that panicked or whose scan failed
	NewAnswers int           `json:"new_answers"` // Answers mirrored this cycle
	Vanished   int           `json:"vanished"`    // Previously mirrored answers no longer found
	Abandoned  int           `json:"abandoned"`   // Publish attempts that exhausted their retries
}
