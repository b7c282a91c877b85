package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ppiankov/answermirror/internal/history"
	"github.com/ppiankov/answermirror/internal/model"
	"github.com/ppiankov/answermirror/internal/publish"
	"github.com/ppiankov/answermirror/internal/reconcile"
	"github.com/ppiankov/answermirror/internal/remediate"
	"github.com/ppiankov/answermirror/internal/scan"
)

// flushTimeout bounds the history write on shutdown
const flushTimeout = 30 * time.Second

// Forum is the source forum
type Forum interface {
	scan.CommentSource
	HotPosts(ctx context.Context, subreddit string, limit int) ([]model.SourcePost, error)
	RefreshAuth(ctx context.Context) error
}

// Deps are the collaborators of a Runner
type Deps struct {
	Forum      Forum
	Scanner    *scan.Scanner
	Publisher  *publish.Publisher
	Remediator remediate.Remediator
	Store      history.Store
	Logger     *slog.Logger
}

// Runner executes poll cycles. It owns the history and is not safe for
// concurrent use.
type Runner struct {
	forum      Forum
	scanner    *scan.Scanner
	publisher  *publish.Publisher
	remediator remediate.Remediator
	store      history.Store
	logger     *slog.Logger

	source      model.SourceConfig
	destination string
	rules       reconcile.Rules
	schedule    cron.Schedule

	hist  *history.History
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a runner
func New(cfg *model.Config, deps Deps) (*Runner, error) {
	if deps.Forum == nil || deps.Scanner == nil || deps.Publisher == nil || deps.Store == nil {
		return nil, errors.New("bot: forum, scanner, publisher and store are required")
	}
	if cfg.Source.Subreddit == "" || cfg.Destination.Subreddit == "" {
		return nil, errors.New("bot: source and destination subreddits are required")
	}

	schedule, err := cron.ParseStandard(cfg.Poll.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse poll schedule %q: %w", cfg.Poll.Schedule, err)
	}

	r := &Runner{
		forum:       deps.Forum,
		scanner:     deps.Scanner,
		publisher:   deps.Publisher,
		remediator:  deps.Remediator,
		store:       deps.Store,
		logger:      deps.Logger,
		source:      cfg.Source,
		destination: cfg.Destination.Subreddit,
		rules:       reconcile.RulesFromConfig(cfg.Source),
		schedule:    schedule,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.remediator == nil {
		r.remediator = remediate.NewLogRemediator(r.logger, 0)
	}
	return r, nil
}

// Load reads the history from the store
func (r *Runner) Load(ctx context.Context) error {
	h, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	r.hist = h
	return nil
}

// History returns the in-memory history
func (r *Runner) History() *history.History {
	return r.hist
}

// Run executes cycles on the poll schedule until ctx is cancelled.
// The history is saved on shutdown and before a panic propagates.
func (r *Runner) Run(ctx context.Context) error {
	if r.hist == nil {
		if err := r.Load(ctx); err != nil {
			return err
		}
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("poll loop crashed, saving history", "panic", p)
			r.flush()
			panic(p)
		}
	}()

	for {
		report, err := r.Cycle(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error("cycle failed", "error", err)
		} else if err == nil {
			r.logReport(report)
		}

		if ctx.Err() != nil {
			break
		}

		next := r.schedule.Next(r.now())
		r.logger.Info("sleeping until next cycle", "next", next.Format(time.DateTime))
		if err := r.sleep(ctx, next.Sub(r.now())); err != nil {
			break
		}
	}

	r.logger.Info("shutting down")
	return r.flush()
}

// Cycle runs one poll cycle and saves the history, also when ctx is
// cancelled part way through.
func (r *Runner) Cycle(ctx context.Context) (model.CycleReport, error) {
	report := model.CycleReport{StartedAt: r.now()}
	if r.hist == nil {
		if err := r.Load(ctx); err != nil {
			return report, err
		}
	}

	if err := r.forum.RefreshAuth(ctx); err != nil {
		return report, fmt.Errorf("refresh auth: %w", err)
	}

	posts, err := r.forum.HotPosts(ctx, r.source.Subreddit, r.source.HotLimit)
	if err != nil {
		return report, fmt.Errorf("fetch hot posts: %w", err)
	}
	report.Posts = len(posts)

	for _, post := range posts {
		if ctx.Err() != nil {
			break
		}
		r.processPost(ctx, post, &report)
	}

	report.Duration = r.now().Sub(report.StartedAt)
	if ctx.Err() != nil {
		// Answers mirrored before the cancellation must not be posted again
		if err := r.flush(); err != nil {
			return report, errors.Join(ctx.Err(), err)
		}
		return report, ctx.Err()
	}
	if err := r.store.Save(ctx, r.hist); err != nil {
		return report, fmt.Errorf("save history: %w", err)
	}
	return report, nil
}

func (r *Runner) processPost(ctx context.Context, post model.SourcePost, report *model.CycleReport) {
	log := r.logger.With("thread", post.ID)

	defer func() {
		if p := recover(); p != nil {
			log.Error("post processing panicked", "panic", p)
			report.Failed++
			r.hist.ForgetCount(post.ID)
		}
	}()

	log.Info("post", "title", post.Title, "author", post.Author, "comments", post.NumComments)

	decision := reconcile.Gate(post, r.hist, r.rules)
	if !decision.Scan() {
		log.Info("post skipped", "reason", string(decision.Reason))
		report.Skipped++
		return
	}

	res := r.scanner.Scan(ctx, post)
	if res.Err != nil {
		report.Failed++
		r.hist.ForgetCount(post.ID)
		return
	}
	report.Scanned++

	diff := reconcile.Reconcile(post.ID, res.Answers, r.hist)

	if len(diff.Vanished) > 0 {
		report.Vanished += len(diff.Vanished)
		dest, _ := r.hist.Destination(post.ID)
		err := r.remediator.Report(ctx, remediate.Vanished{
			ThreadID:      post.ID,
			ThreadTitle:   post.Title,
			DestinationID: dest,
			AnswerIDs:     diff.Vanished,
		})
		if err != nil {
			log.Warn("vanished answer report failed", "error", err)
		}
	}

	if len(diff.New) == 0 {
		return
	}

	dest, ok := r.hist.Destination(post.ID)
	if !ok {
		out := r.publisher.CreateDestination(ctx, r.destination, post)
		if !out.OK() {
			log.Error("destination post abandoned", "attempts", out.Attempts, "error", out.Err)
			report.Abandoned++
			r.hist.ForgetCount(post.ID)
			return
		}
		if err := r.hist.BindDestination(post.ID, out.Ref); err != nil {
			log.Error("bind destination", "error", err)
			r.hist.ForgetCount(post.ID)
			return
		}
		dest = out.Ref
		log.Info("destination created", "destination", dest)
	}

	retry := false
	for _, answer := range diff.New {
		out := r.publisher.PublishAnswer(ctx, dest, answer)
		if !out.OK() {
			log.Error("answer abandoned", "comment", answer.ID, "attempts", out.Attempts, "error", out.Err)
			report.Abandoned++
			retry = true
			continue
		}
		r.hist.MarkPosted(post.ID, answer.ID)
		report.NewAnswers++
		log.Info("answer mirrored", "comment", answer.ID, "author", answer.Author)
	}
	if retry {
		r.hist.ForgetCount(post.ID)
	}
}

func (r *Runner) flush() error {
	if r.hist == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := r.store.Save(ctx, r.hist); err != nil {
		r.logger.Error("save history on exit", "error", err)
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (r *Runner) logReport(rep model.CycleReport) {
	r.logger.Info("cycle complete",
		"posts", rep.Posts,
		"skipped", rep.Skipped,
		"scanned", rep.Scanned,
		"failed", rep.Failed,
		"new_answers", rep.NewAnswers,
		"vanished", rep.Vanished,
		"abandoned", rep.Abandoned,
		"duration", rep.Duration.Round(time.Millisecond))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
