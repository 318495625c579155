package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cascadehq/cascade/internal/observability"
)

var (
	eventsTypeFlag  string
	eventsLimitFlag int
	eventsAllFlag   bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent engine activity",
	Long: `Show the newest entries from the engine's activity log: dependency
changes, timeline updates, cascades, and milestone toggles. Scoped to the
current workspace unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{Type: eventsTypeFlag}
		if !eventsAllFlag {
			filter.Workspace = workspaceFlag(cmd)
		}

		events, err := EventLog.Tail(filter, eventsLimitFlag)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		for _, e := range events {
			fmt.Println(renderEventLine(e, eventsAllFlag))
		}
		return nil
	},
}

// renderEventLine formats one activity entry. The workspace column only
// appears in --all mode, where entries from several workspaces interleave.
func renderEventLine(e observability.Event, withWorkspace bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-19s", e.Time.Format("2006-01-02 15:04:05"), e.Type)
	if withWorkspace && e.Workspace != "" {
		fmt.Fprintf(&b, "  [%s]", e.Workspace)
	}
	fmt.Fprintf(&b, "  %s", e.Message)
	if shifted, ok := e.Data["shifted"].(float64); ok {
		fmt.Fprintf(&b, " (%d task(s) shifted)", int(shifted))
	}
	return b.String()
}

func init() {
	eventsCmd.Flags().StringVar(&eventsTypeFlag, "type", "", "Only show events of this type (e.g. timeline.cascaded)")
	eventsCmd.Flags().IntVar(&eventsLimitFlag, "limit", 20, "Maximum number of events to show")
	eventsCmd.Flags().BoolVar(&eventsAllFlag, "all", false, "Show events from every workspace")
	eventsCmd.Flags().String("workspace", "", "Workspace name (default from .cascadeconfig)")

	rootCmd.AddCommand(eventsCmd)
}
