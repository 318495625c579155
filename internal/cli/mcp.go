package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	cascademcp "github.com/cascadehq/cascade/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the cascade MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cascade MCP server on stdio",
	Long: `Start the cascade MCP server on stdio transport.

The server exposes the engine as MCP tools that AI coding assistants can
call: get_task, list_tasks, add_dependency, remove_dependency, list_blockers,
list_dependents, update_timeline, toggle_milestone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GanttMgr == nil {
			return fmt.Errorf("gantt manager not initialized")
		}

		srv := cascademcp.NewServer(GanttMgr, DefaultWorkspace, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
