package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Cascade - task dependency and timeline cascade engine",
	Long: `Cascade keeps task start/due dates consistent under Gantt-style
dependency constraints (finish-to-start, start-to-start, finish-to-finish,
start-to-finish). It rejects graph mutations that would introduce cycles and
propagates date changes transitively through the dependency graph.

Tasks and dependency edges are stored per workspace; every command accepts
--workspace to pick one.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cascade %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
