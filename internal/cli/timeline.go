package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Update task dates and toggle milestones",
	Long: `Timeline commands.

"update" changes a task's start/due dates, validates them, and cascades the
change through every dependent task so all constraints hold again. The full
list of date shifts is printed; nothing outside that list was touched.

"milestone" toggles the zero-duration milestone flag on a task.`,
}

var (
	timelineStartFlag string
	timelineDueFlag   string
)

var timelineUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Change a task's dates and cascade to dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}
		if timelineStartFlag == "" && timelineDueFlag == "" {
			return fmt.Errorf("at least one of --start or --due is required")
		}

		start, err := parseDateFlag(timelineStartFlag)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		due, err := parseDateFlag(timelineDueFlag)
		if err != nil {
			return fmt.Errorf("parsing --due: %w", err)
		}

		mutations, err := GanttMgr.UpdateTimeline(workspaceFlag(cmd), args[0], start, due)
		if err != nil {
			return fmt.Errorf("updating timeline: %w", err)
		}

		if len(mutations) == 0 {
			fmt.Println("No changes.")
			return nil
		}
		fmt.Print(renderMutationTable(mutations))
		return nil
	},
}

var milestoneOffFlag bool

var timelineMilestoneCmd = &cobra.Command{
	Use:   "milestone <task-id>",
	Short: "Mark a task as a milestone (or clear it with --off)",
	Long: `Mark a task as a zero-duration milestone. The date range collapses to a
single point: due takes the start date, or start takes the due date when only
due is set. --off clears the flag without touching dates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		task, err := GanttMgr.ToggleMilestone(workspaceFlag(cmd), args[0], !milestoneOffFlag)
		if err != nil {
			return fmt.Errorf("toggling milestone: %w", err)
		}

		state := "cleared"
		if task.IsMilestone {
			state = "set"
		}
		fmt.Printf("Milestone %s on %s\n", state, task.ID)
		fmt.Printf("  Start: %s\n", formatDateOrDash(task.StartDate))
		fmt.Printf("  Due:   %s\n", formatDateOrDash(task.DueDate))
		return nil
	},
}

func init() {
	timelineUpdateCmd.Flags().StringVar(&timelineStartFlag, "start", "", "New start date (YYYY-MM-DD)")
	timelineUpdateCmd.Flags().StringVar(&timelineDueFlag, "due", "", "New due date (YYYY-MM-DD)")

	timelineMilestoneCmd.Flags().BoolVar(&milestoneOffFlag, "off", false, "Clear the milestone flag instead of setting it")

	timelineCmd.PersistentFlags().String("workspace", "", "Workspace name (default from .cascadeconfig)")

	timelineCmd.AddCommand(timelineUpdateCmd)
	timelineCmd.AddCommand(timelineMilestoneCmd)

	rootCmd.AddCommand(timelineCmd)
}
