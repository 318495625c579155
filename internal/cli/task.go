package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (create, show, list)",
	Long: `Task management commands.

Create tasks with optional start/due dates, inspect a single task, or list
everything in a workspace.`,
}

var (
	taskCreateStartFlag     string
	taskCreateDueFlag       string
	taskCreateMilestoneFlag bool
)

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Long: `Create a new task with the given title.

Dates are optional and use YYYY-MM-DD format. --milestone collapses the date
range to a single point and keeps it that way through cascades.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		start, err := parseDateFlag(taskCreateStartFlag)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		due, err := parseDateFlag(taskCreateDueFlag)
		if err != nil {
			return fmt.Errorf("parsing --due: %w", err)
		}

		task, err := GanttMgr.CreateTask(workspaceFlag(cmd), args[0], start, due, taskCreateMilestoneFlag)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}

		fmt.Printf("Created task %s\n", task.ID)
		fmt.Printf("  Title:     %s\n", task.Title)
		if task.StartDate != nil {
			fmt.Printf("  Start:     %s\n", task.StartDate.Format("2006-01-02"))
		}
		if task.DueDate != nil {
			fmt.Printf("  Due:       %s\n", task.DueDate.Format("2006-01-02"))
		}
		if task.IsMilestone {
			fmt.Printf("  Milestone: yes\n")
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task's dates, milestone flag, and edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		ws := workspaceFlag(cmd)
		task, err := GanttMgr.GetTask(ws, args[0])
		if err != nil {
			return fmt.Errorf("showing task: %w", err)
		}

		fmt.Printf("%s  %s\n", task.ID, task.Title)
		fmt.Printf("  Start:     %s\n", formatDateOrDash(task.StartDate))
		fmt.Printf("  Due:       %s\n", formatDateOrDash(task.DueDate))
		fmt.Printf("  Milestone: %v\n", task.IsMilestone)

		blockers, err := GanttMgr.Blockers(ws, task.ID)
		if err != nil {
			return fmt.Errorf("showing task: %w", err)
		}
		dependents, err := GanttMgr.Dependents(ws, task.ID)
		if err != nil {
			return fmt.Errorf("showing task: %w", err)
		}

		if len(blockers) > 0 {
			fmt.Println("  Blocked by:")
			for _, e := range blockers {
				fmt.Printf("    %s  %s --%s--> %s\n", e.ID, e.SourceID, e.Type, e.TargetID)
			}
		}
		if len(dependents) > 0 {
			fmt.Println("  Blocks:")
			for _, e := range dependents {
				fmt.Printf("    %s  %s --%s--> %s\n", e.ID, e.SourceID, e.Type, e.TargetID)
			}
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks in the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		tasks, err := GanttMgr.ListTasks(workspaceFlag(cmd))
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}

		fmt.Print(renderTaskTable(tasks))
		return nil
	},
}

// parseDateFlag parses a YYYY-MM-DD flag value; an empty value means unset.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	t = t.UTC()
	return &t, nil
}

func formatDateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// workspaceFlag resolves the persistent --workspace flag, falling back to
// the configured default.
func workspaceFlag(cmd *cobra.Command) string {
	ws, _ := cmd.Flags().GetString("workspace")
	if ws == "" {
		return DefaultWorkspace
	}
	return ws
}

func init() {
	taskCreateCmd.Flags().StringVar(&taskCreateStartFlag, "start", "", "Start date (YYYY-MM-DD)")
	taskCreateCmd.Flags().StringVar(&taskCreateDueFlag, "due", "", "Due date (YYYY-MM-DD)")
	taskCreateCmd.Flags().BoolVar(&taskCreateMilestoneFlag, "milestone", false, "Create as a zero-duration milestone")

	taskCmd.PersistentFlags().String("workspace", "", "Workspace name (default from .cascadeconfig)")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskListCmd)

	rootCmd.AddCommand(taskCmd)
}
