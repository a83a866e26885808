// Package cli provides the lessonscout command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lessonscout/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose bool
	homeDir string
	userID  string
)

// DefaultUser is the identity used by local commands when --user is not given.
const DefaultUser = "local"

var rootCmd = &cobra.Command{
	Use:   "lessonscout",
	Short: "Find educational resources across content sources",
	Long: `lessonscout searches several educational content sources concurrently
(CK-12, Khan Academy and PDF worksheets), merges their results and filters
them for relevance to a topic and grade level.

Run 'lessonscout serve' to start the HTTP API, or 'lessonscout search' to run
a search locally.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "config and data directory (default ~/.lessonscout)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", DefaultUser, "user id that owns sessions created and read locally")
}

// currentUser returns the identity for local commands.
func currentUser() string {
	if userID == "" {
		return DefaultUser
	}
	return userID
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
