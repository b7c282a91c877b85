package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/answermirror/internal/history"
)

var (
	historyAll  bool
	migrateTo   string
	migrateDest string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and migrate the scan history",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Summarise the persisted history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := history.OpenReadOnly(cfg.History.Type, cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		h, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}

		scanned, withAnswers, answers := h.Stats()
		fmt.Printf("History: %s (%s)\n", cfg.History.Path, cfg.History.Type)
		fmt.Printf("Threads scanned: %d\n", scanned)
		fmt.Printf("Threads with mirrored answers: %d\n", withAnswers)
		fmt.Printf("Answers mirrored: %d\n", answers)

		if !historyAll {
			return nil
		}

		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "THREAD\tCOMMENTS\tANSWERS\tDESTINATION")
		for _, id := range h.Threads() {
			rec, _ := h.Record(id)
			count := "-"
			if rec.Scanned {
				count = fmt.Sprint(rec.CommentCount)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", id, count, len(rec.Posted), orDash(rec.DestinationID))
		}
		return w.Flush()
	},
}

var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the history into another store",
	Example: `  answermirror history migrate --to sqlite --dest history.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if migrateDest == "" {
			return errors.New("--dest is required")
		}
		if migrateDest == cfg.History.Path {
			return errors.New("destination must differ from the current history path")
		}

		return migrateHistory(cmd.Context(), cfg.History.Type, cfg.History.Path, migrateTo, migrateDest)
	},
}

func migrateHistory(ctx context.Context, fromType, fromPath, toType, toPath string) error {
	src, err := history.OpenReadOnly(fromType, fromPath)
	if err != nil {
		return fmt.Errorf("open source history: %w", err)
	}
	defer src.Close()

	h, err := src.Load(ctx)
	if err != nil {
		return err
	}

	dst, err := history.Open(toType, toPath)
	if err != nil {
		return fmt.Errorf("open destination history: %w", err)
	}
	defer dst.Close()

	if err := dst.Save(ctx, h); err != nil {
		return err
	}

	_, _, answers := h.Stats()
	fmt.Fprintf(os.Stderr, "✓ Migrated %d threads (%d answers) to %s (%s)\n", len(h.Threads()), answers, toPath, toType)
	return nil
}

func init() {
	historyShowCmd.Flags().BoolVar(&historyAll, "all", false, "list every thread")
	historyMigrateCmd.Flags().StringVar(&migrateTo, "to", "sqlite", "destination store type (json, sqlite)")
	historyMigrateCmd.Flags().StringVar(&migrateDest, "dest", "", "destination path")

	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyMigrateCmd)
}
