package remediate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/answermirror/internal/cache"
	"github.com/ppiankov/answermirror/internal/model"
)

// Vanished describes mirrored answers that no longer qualify on a thread
type Vanished struct {
	ThreadID      string
	ThreadTitle   string
	DestinationID string
	AnswerIDs     []string
}

// Remediator handles vanished answers
type Remediator interface {
	Report(ctx context.Context, v Vanished) error
}

// LogRemediator logs vanished answers, suppressing repeats of the same report
type LogRemediator struct {
	logger *slog.Logger
	seen   cache.Seen
}

// NewLogRemediator creates a log-only remediator. Identical reports within ttl are logged once.
func NewLogRemediator(logger *slog.Logger, ttl time.Duration) *LogRemediator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRemediator{
		logger: logger,
		seen:   cache.NewMemorySeen(ttl, cache.DefaultCleanup),
	}
}

// Report logs v unless the same report was logged recently
func (r *LogRemediator) Report(ctx context.Context, v Vanished) error {
	if len(v.AnswerIDs) == 0 {
		return nil
	}
	if !r.seen.Mark(cache.VanishedKey(v.ThreadID, v.AnswerIDs)) {
		r.logger.Debug("vanished answers already reported", "thread", v.ThreadID, "count", len(v.AnswerIDs))
		return nil
	}
	r.logger.Warn("answers vanished",
		"thread", v.ThreadID,
		"destination", v.DestinationID,
		"answers", strings.Join(v.AnswerIDs, ","))
	return nil
}

// Multi fans a report out to several remediators
type Multi []Remediator

// Report calls every remediator and joins their errors
func (m Multi) Report(ctx context.Context, v Vanished) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the configured remediator. The discord handler also logs.
func FromConfig(cfg model.RemediationConfig, logger *slog.Logger) (Remediator, error) {
	logRem := NewLogRemediator(logger, cfg.ReportTTL)

	switch strings.ToLower(cfg.Handler) {
	case "", "log":
		return logRem, nil
	case "discord":
		d, err := NewDiscordRemediator(cfg.DiscordWebhookURL, cfg.ReportTTL)
		if err != nil {
			return nil, err
		}
		return Multi{logRem, d}, nil
	default:
		return nil, fmt.Errorf("unknown remediation handler: %s (supported: log, discord)", cfg.Handler)
	}
}
