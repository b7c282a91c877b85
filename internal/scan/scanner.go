package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/answermirror/internal/classify"
	"github.com/ppiankov/answermirror/internal/model"
)

// CommentSource fetches the top-level comments of a thread.
// Collapsed "more comments" nodes must be returned as placeholders, not errors.
type CommentSource interface {
	Comments(ctx context.Context, post model.SourcePost) ([]model.Comment, error)
}

// Result contains the answers found in one thread.
// Answers is empty whenever Err is set; a partial list is never returned.
type Result struct {
	Answers []model.Comment
	Err     error
}

// Scanner finds qualifying answers in a thread
type Scanner struct {
	source     CommentSource
	classifier *classify.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewScanner creates a new scanner
func NewScanner(source CommentSource, classifier *classify.Classifier, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		source:     source,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source (for tests)
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// Scan returns the accepted top-level comments of post in source order
func (s *Scanner) Scan(ctx context.Context, post model.SourcePost) Result {
	log := s.logger.With("thread", post.ID)
	log.Debug("scanning for answers")

	comments, err := s.source.Comments(ctx, post)
	if err != nil {
		log.Warn("scan aborted", "error", err)
		return Result{Err: fmt.Errorf("fetch comments for %s: %w", post.ID, err)}
	}

	now := s.now()
	var answers []model.Comment
	for _, c := range comments {
		verdict := s.classifier.Classify(c, now)
		if !verdict.Accepted() {
			log.Debug("comment skipped", "comment", c.ID, "author", c.Author, "reason", verdict.String())
			continue
		}

		log.Info("answer found", "comment", c.ID, "author", c.Author, "preview", preview(c.Body, 25))
		answers = append(answers, c)
	}

	return Result{Answers: answers}
}

// Verdicts classifies every comment of post without filtering
func (s *Scanner) Verdicts(ctx context.Context, post model.SourcePost) ([]model.Comment, []classify.Verdict, error) {
	comments, err := s.source.Comments(ctx, post)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch comments for %s: %w", post.ID, err)
	}

	now := s.now()
	verdicts := make([]classify.Verdict, len(comments))
	for i, c := range comments {
		verdicts[i] = s.classifier.Classify(c, now)
	}
	return comments, verdicts, nil
}

func preview(body string, n int) string {
	runes := []rune(body)
	if len(runes) <= n {
		return body
	}
	return string(runes[:n]) + "..."
}
