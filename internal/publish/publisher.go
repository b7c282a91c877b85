package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/answermirror/internal/model"
	"github.com/ppiankov/answermirror/internal/reconcile"
)

// Submitter writes to the destination forum
type Submitter interface {
	// SubmitPost creates a text post and returns its reference
	SubmitPost(ctx context.Context, subreddit, title, body string) (string, error)

	// AddComment replies to a destination post
	AddComment(ctx context.Context, destinationID, body string) error
}

// sleepFunc waits between attempts (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Outcome is the result of a bounded publish attempt
type Outcome struct {
	Ref      string // Destination post reference, set by CreateDestination
	Attempts int
	Err      error // Last error when every attempt failed
}

// OK reports whether the publish succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Publisher mirrors answers into the destination forum with bounded retries
type Publisher struct {
	submitter    Submitter
	maxAttempts  int
	retryDelay   time.Duration
	excerptChars int
	titleLimit   int
	logger       *slog.Logger
}

// New creates a publisher
func New(submitter Submitter, cfg model.PublishConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		submitter:    submitter,
		maxAttempts:  cfg.MaxAttempts,
		retryDelay:   cfg.RetryDelay,
		excerptChars: cfg.ExcerptChars,
		titleLimit:   cfg.TitleLimit,
		logger:       logger,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 5
	}
	if p.excerptChars <= 0 {
		p.excerptChars = DefaultExcerptChars
	}
	if p.titleLimit <= 0 {
		p.titleLimit = reconcile.DefaultTitleLimit
	}
	return p
}

// CreateDestination submits the destination post for a source thread
func (p *Publisher) CreateDestination(ctx context.Context, subreddit string, post model.SourcePost) Outcome {
	title := reconcile.DestinationTitle(post.Title, post.Author, p.titleLimit)
	body := DestinationBody(post)

	var ref string
	out := p.retry(ctx, "create destination", post.ID, func() error {
		var err error
		ref, err = p.submitter.SubmitPost(ctx, subreddit, title, body)
		if err == nil && ref == "" {
			return errors.New("submit returned an empty post reference")
		}
		return err
	})
	if out.OK() {
		out.Ref = ref
	}
	return out
}

// PublishAnswer posts one answer as a comment on the destination post
func (p *Publisher) PublishAnswer(ctx context.Context, destinationID string, answer model.Comment) Outcome {
	body := AnswerBody(answer, p.excerptChars)
	return p.retry(ctx, "publish answer", answer.ID, func() error {
		return p.submitter.AddComment(ctx, destinationID, body)
	})
}

func (p *Publisher) retry(ctx context.Context, op, id string, fn func() error) Outcome {
	var out Outcome
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		out.Attempts = attempt
		err := fn()
		if err == nil {
			out.Err = nil
			return out
		}
		out.Err = fmt.Errorf("%s %s: %w", op, id, err)

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return out
		}

		p.logger.Warn("publish attempt failed",
			"op", op, "id", id, "attempt", attempt, "max", p.maxAttempts, "error", err)

		if attempt < p.maxAttempts {
			if err := sleepFunc(ctx, p.retryDelay); err != nil {
				out.Err = fmt.Errorf("%s %s: %w", op, id, err)
				return out
			}
		}
	}
	return out
}
