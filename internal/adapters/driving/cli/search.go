package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

var (
	searchGrade string
	searchWatch bool
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for learning resources on a topic",
	Long: `Runs a search locally: every content source is queried, the results are
merged and, when an LLM is configured, filtered for relevance to the topic
and grade. The command waits for the search to finish and prints the results.

Use --watch to follow per-source progress while the search runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchGrade, "grade", "g", "", "grade 1-12 or 'all' (default 5)")
	searchCmd.Flags().BoolVarP(&searchWatch, "watch", "w", false, "show live per-source progress")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the session as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	grade, err := domain.ParseGrade(searchGrade)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()
	printWarnings(cmd, rt.Warnings)

	if err := rt.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer drainScheduler(rt)

	session, err := rt.Search.Submit(ctx, currentUser(), query, grade)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchWatch && !searchJSON {
		cmd.Printf("Searching %q (%s), session %s\n", session.Query, gradeLabel(session.Grade), session.ID)
	}

	final, err := followSession(ctx, cmd, rt.Search, session.ID, searchWatch && !searchJSON)
	if err != nil {
		return fmt.Errorf("waiting for search %s: %w", session.ID, err)
	}

	if searchJSON {
		return outputJSON(cmd, final)
	}
	if final.Status == domain.SessionFailed {
		return fmt.Errorf("search %s failed; see 'lessonscout status %s'", final.ID, final.ID)
	}
	outputResults(cmd, final.Result)
	return nil
}

func gradeLabel(g domain.GradeFilter) string {
	if g.IsAll() {
		return "all grades"
	}
	return "grade " + g.String()
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResults(cmd *cobra.Command, items []domain.ResultItem) {
	if len(items) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range items {
		// Format: [N] Title (Type)
		title := items[i].Title
		if title == "" {
			title = items[i].Link
		}
		cmd.Printf("  [%d] %s (%s)\n", i+1, title, items[i].Type)
		if items[i].Link != "" {
			cmd.Printf("      %s\n", items[i].Link)
		}
		if items[i].Description != "" {
			cmd.Printf("      %s\n", items[i].Description)
		}
		cmd.Println()
	}
}
