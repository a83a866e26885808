package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

var (
	statusJSON   bool
	statusEvents bool
	statusLimit  int
)

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Show a search session, or list recent sessions",
	Long: `Shows the status and results of a stored search session.
Without an id, lists your most recent sessions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVarP(&statusEvents, "events", "e", false, "include per-source events")
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "number of sessions to list")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{readOnly: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(args) == 0 {
		sessions, err := rt.Search.Sessions(ctx, currentUser(), statusLimit)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		if statusJSON {
			return outputJSON(cmd, sessions)
		}
		outputSessionList(cmd, sessions)
		return nil
	}

	session, err := rt.Search.Session(ctx, currentUser(), args[0])
	if err != nil {
		return fmt.Errorf("getting session: %w", err)
	}
	var events []domain.SourceEvent
	if statusEvents {
		events, err = rt.Search.Events(ctx, currentUser(), session.ID)
		if err != nil {
			return fmt.Errorf("getting events: %w", err)
		}
	}

	if statusJSON {
		if !statusEvents {
			return outputJSON(cmd, session)
		}
		return outputJSON(cmd, struct {
			Session *domain.SearchSession `json:"session"`
			Events  []domain.SourceEvent  `json:"events"`
		}{session, events})
	}

	cmd.Printf("Session: %s\n", session.ID)
	cmd.Printf("  Query:   %s\n", session.Query)
	cmd.Printf("  Grade:   %s\n", gradeLabel(session.Grade))
	cmd.Printf("  Status:  %s\n", session.Status)
	cmd.Printf("  Created: %s\n", formatTime(session.CreatedAt))
	cmd.Printf("  Updated: %s\n", formatTime(session.UpdatedAt))
	cmd.Println()

	if statusEvents {
		cmd.Println("Events:")
		for i := range events {
			cmd.Printf("  %3d  %-12s %-10s %d items\n",
				events[i].Seq, events[i].Source, events[i].Status, len(events[i].Payload))
		}
		cmd.Println()
	}

	if session.Status == domain.SessionCompleted {
		outputResults(cmd, session.Result)
	}
	return nil
}

func outputSessionList(cmd *cobra.Command, sessions []domain.SearchSession) {
	if len(sessions) == 0 {
		cmd.Println("No sessions found.")
		return
	}
	for i := range sessions {
		s := &sessions[i]
		cmd.Printf("%s  %-9s  %-10s  %s  %s\n",
			s.ID, s.Status, gradeLabel(s.Grade), formatTime(s.CreatedAt), s.Query)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
