package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/answermirror/internal/model"
)

var inspectTimeout time.Duration

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <thread-id>",
	Short: "Classify every top-level comment of a thread",
	Long: `Fetch a source thread and print the verdict for each top-level comment.
Nothing is posted and the history is not touched.`,
	Example: `  answermirror inspect 1b2c3d`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", time.Minute, "overall timeout")
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	threadID := strings.TrimPrefix(args[0], "t3_")

	client, err := a.forum()
	if err != nil {
		return err
	}
	scanner, err := a.scanner(client)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	if err := client.RefreshAuth(ctx); err != nil {
		return err
	}

	comments, verdicts, err := scanner.Verdicts(ctx, model.SourcePost{ID: threadID})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMENT\tAUTHOR\tCHARS\tVERDICT")
	accepted := 0
	for i, c := range comments {
		if verdicts[i].Accepted() {
			accepted++
		}
		id := c.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", id, orDash(c.Author), len([]rune(c.Body)), verdicts[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%d of %d comments qualify as answers\n", accepted, len(comments))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
