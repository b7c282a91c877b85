package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// DryRun logs submissions instead of sending them
type DryRun struct {
	logger *slog.Logger
	seq    atomic.Int64
}

// NewDryRun creates a logging submitter
func NewDryRun(logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{logger: logger}
}

// SubmitPost logs the post and returns a placeholder reference
func (d *DryRun) SubmitPost(ctx context.Context, subreddit, title, body string) (string, error) {
	ref := fmt.Sprintf("dry-run-%d", d.seq.Add(1))
	d.logger.Info("dry-run submit", "subreddit", subreddit, "title", title, "body", body, "ref", ref)
	return ref, nil
}

// AddComment logs the comment
func (d *DryRun) AddComment(ctx context.Context, destinationID, body string) error {
	d.logger.Info("dry-run comment", "destination", destinationID, "body", body)
	return nil
}
