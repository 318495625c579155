package cli

import (
	"fmt"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependency edges (add, remove, blockers, dependents)",
	Long: `Dependency graph commands.

An edge runs from a blocking source task to the dependent target task it
constrains. Four constraint types are supported: fs (finish-to-start),
ss (start-to-start), ff (finish-to-finish), sf (start-to-finish).

Adding an edge fails if the ordered pair already exists, if either task is
unknown, or if the edge would close a cycle. Edges are never edited; change
a type by removing and re-adding.`,
}

var depAddTypeFlag string

var depAddCmd = &cobra.Command{
	Use:   "add <source-task-id> <target-task-id>",
	Short: "Add a dependency edge from source to target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		edge, err := GanttMgr.AddDependency(
			workspaceFlag(cmd),
			args[0],
			args[1],
			models.DependencyType(depAddTypeFlag),
		)
		if err != nil {
			return fmt.Errorf("adding dependency: %w", err)
		}

		fmt.Printf("Created dependency %s\n", edge.ID)
		fmt.Printf("  %s --%s--> %s\n", edge.SourceID, edge.Type, edge.TargetID)
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <dep-id>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		if err := GanttMgr.RemoveDependency(workspaceFlag(cmd), args[0]); err != nil {
			return fmt.Errorf("removing dependency: %w", err)
		}
		fmt.Printf("Removed dependency %s\n", args[0])
		return nil
	},
}

var depBlockersCmd = &cobra.Command{
	Use:   "blockers <task-id>",
	Short: "List the edges constraining a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		edges, err := GanttMgr.Blockers(workspaceFlag(cmd), args[0])
		if err != nil {
			return fmt.Errorf("listing blockers: %w", err)
		}
		printEdges(edges)
		return nil
	},
}

var depDependentsCmd = &cobra.Command{
	Use:   "dependents <task-id>",
	Short: "List the edges a task constrains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		edges, err := GanttMgr.Dependents(workspaceFlag(cmd), args[0])
		if err != nil {
			return fmt.Errorf("listing dependents: %w", err)
		}
		printEdges(edges)
		return nil
	},
}

func printEdges(edges []models.DependencyEdge) {
	if len(edges) == 0 {
		fmt.Println("No dependencies.")
		return
	}
	for _, e := range edges {
		fmt.Printf("%s  %s --%s--> %s\n", e.ID, e.SourceID, e.Type, e.TargetID)
	}
}

// completeDependencyTypes returns valid constraint types for shell completion.
func completeDependencyTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"fs\tFinish-to-start: target may not start before source finishes",
		"ss\tStart-to-start: target may not start before source starts",
		"ff\tFinish-to-finish: target may not finish before source finishes",
		"sf\tStart-to-finish: target may not finish before source starts",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	depAddCmd.Flags().StringVar(&depAddTypeFlag, "type", "fs", "Constraint type: fs, ss, ff, or sf")
	_ = depAddCmd.RegisterFlagCompletionFunc("type", completeDependencyTypes)

	depCmd.PersistentFlags().String("workspace", "", "Workspace name (default from .cascadeconfig)")

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depBlockersCmd)
	depCmd.AddCommand(depDependentsCmd)

	rootCmd.AddCommand(depCmd)
}
