package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/answermirror/internal/bot"
	"github.com/ppiankov/answermirror/internal/history"
	"github.com/ppiankov/answermirror/internal/publish"
	"github.com/ppiankov/answermirror/internal/remediate"
)

var (
	runOnce   bool
	runDryRun bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the poll loop",
	Long: `Poll the source subreddit on the configured schedule, mirror new answers
into the destination subreddit and report answers that vanished.

With --dry-run nothing is submitted and the history file is left untouched.`,
	Example: `  answermirror run
  answermirror run --once --dry-run -v`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log submissions instead of posting them")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	dryRun := runDryRun || a.cfg.Destination.DryRun

	client, err := a.forum()
	if err != nil {
		return err
	}
	scanner, err := a.scanner(client)
	if err != nil {
		return err
	}

	var submitter publish.Submitter = client
	if dryRun {
		submitter = publish.NewDryRun(a.logger)
	}

	remediator, err := remediate.FromConfig(a.cfg.Remediation, a.logger)
	if err != nil {
		return err
	}

	openStore := history.Open
	if dryRun {
		openStore = history.OpenReadOnly
	}
	store, err := openStore(a.cfg.History.Type, a.cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runner, err := bot.New(a.cfg, bot.Deps{
		Forum:      client,
		Scanner:    scanner,
		Publisher:  publish.New(submitter, a.cfg.Publish, a.logger),
		Remediator: remediator,
		Store:      store,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting",
		"source", a.cfg.Source.Subreddit,
		"destination", a.cfg.Destination.Subreddit,
		"schedule", a.cfg.Poll.Schedule,
		"history", a.cfg.History.Path,
		"dry_run", dryRun)

	if !runOnce {
		return runner.Run(ctx)
	}

	report, err := runner.Cycle(ctx)
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Posts: %d  skipped: %d  scanned: %d  failed: %d  new answers: %d  vanished: %d  abandoned: %d\n",
		report.Posts, report.Skipped, report.Scanned, report.Failed, report.NewAnswers, report.Vanished, report.Abandoned)
	return nil
}
