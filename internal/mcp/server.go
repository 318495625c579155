// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the cascade engine as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/cascadehq/cascade/internal/core"
	"github.com/cascadehq/cascade/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the Gantt manager and exposes it as MCP tools.
type Server struct {
	server   *gomcp.Server
	ganttMgr core.GanttManager
	// defaultWorkspace is used when a tool call omits the workspace field.
	defaultWorkspace string
}

// NewServer creates a new MCP server around the given Gantt manager.
func NewServer(ganttMgr core.GanttManager, defaultWorkspace, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if defaultWorkspace == "" {
		defaultWorkspace = "default"
	}

	s := &Server{
		ganttMgr:         ganttMgr,
		defaultWorkspace: defaultWorkspace,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "cascade", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTaskInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
	TaskID    string `json:"task_id" jsonschema:"required,the unique task identifier (e.g. TASK-00042)"`
}

type taskOutput struct {
	ID          string `json:"id"`
	Workspace   string `json:"workspace"`
	Title       string `json:"title"`
	StartDate   string `json:"start_date,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	IsMilestone bool   `json:"is_milestone"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

type listTasksInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addDependencyInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
	SourceID  string `json:"source_id" jsonschema:"required,the blocking task that must be satisfied first"`
	TargetID  string `json:"target_id" jsonschema:"required,the task constrained by the source"`
	Type      string `json:"type" jsonschema:"required,constraint type: fs (finish-to-start), ss (start-to-start), ff (finish-to-finish), or sf (start-to-finish)"`
}

type dependencyOutput struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
	Created  string `json:"created"`
}

type removeDependencyInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
	EdgeID    string `json:"edge_id" jsonschema:"required,the dependency edge identifier (e.g. DEP-00007)"`
}

type removeDependencyOutput struct {
	Message string `json:"message"`
}

type listEdgesInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
	TaskID    string `json:"task_id" jsonschema:"required,the task whose edges to list"`
}

type listEdgesOutput struct {
	Edges []dependencyOutput `json:"edges"`
	Count int                `json:"count"`
}

type updateTimelineInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
	TaskID    string `json:"task_id" jsonschema:"required,the task whose dates changed"`
	StartDate string `json:"start_date,omitempty" jsonschema:"new start date in YYYY-MM-DD format (omit to keep current)"`
	DueDate   string `json:"due_date,omitempty" jsonschema:"new due date in YYYY-MM-DD format (omit to keep current)"`
}

type mutationOutput struct {
	TaskID   string `json:"task_id"`
	OldStart string `json:"old_start,omitempty"`
	OldDue   string `json:"old_due,omitempty"`
	NewStart string `json:"new_start,omitempty"`
	NewDue   string `json:"new_due,omitempty"`
}

type updateTimelineOutput struct {
	Mutations []mutationOutput `json:"mutations"`
	Count     int              `json:"count"`
}

type toggleMilestoneInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"workspace name (defaults to the configured default workspace)"`
	TaskID    string `json:"task_id" jsonschema:"required,the task to toggle"`
	Enable    bool   `json:"enable" jsonschema:"true to mark as milestone (collapses dates to a point), false to clear the flag"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get task details by ID, including start/due dates and the milestone flag.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List all tasks in a workspace ordered by ID.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_dependency",
		Description: "Add a dependency edge between two tasks. Rejects duplicates, self-dependencies, and edges that would create a cycle.",
	}, s.handleAddDependency)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "remove_dependency",
		Description: "Remove a dependency edge by its ID.",
	}, s.handleRemoveDependency)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_blockers",
		Description: "List the dependency edges constraining a task (its incoming edges).",
	}, s.handleListBlockers)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_dependents",
		Description: "List the dependency edges a task constrains (its outgoing edges).",
	}, s.handleListDependents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_timeline",
		Description: "Change a task's start/due dates and cascade the change through its dependents. Returns the full list of date mutations applied.",
	}, s.handleUpdateTimeline)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_milestone",
		Description: "Enable or disable a task's milestone flag. Enabling collapses the date range to a single point.",
	}, s.handleToggleMilestone)
}

// --- Tool handlers ---

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.ganttMgr.GetTask(s.workspace(input.Workspace), input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}

	return nil, taskToOutput(task), nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	tasks, err := s.ganttMgr.ListTasks(s.workspace(input.Workspace))
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}

	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i := range tasks {
		out.Tasks[i] = taskToOutput(&tasks[i])
	}
	return nil, out, nil
}

func (s *Server) handleAddDependency(_ context.Context, _ *gomcp.CallToolRequest, input addDependencyInput) (*gomcp.CallToolResult, dependencyOutput, error) {
	if input.SourceID == "" || input.TargetID == "" {
		return errorResult("source_id and target_id are required"), dependencyOutput{}, nil
	}
	if input.Type == "" {
		return errorResult("type is required (fs, ss, ff, or sf)"), dependencyOutput{}, nil
	}

	edge, err := s.ganttMgr.AddDependency(
		s.workspace(input.Workspace),
		input.SourceID,
		input.TargetID,
		models.DependencyType(input.Type),
	)
	if err != nil {
		return errorResult(fmt.Sprintf("adding dependency: %s", err)), dependencyOutput{}, nil
	}

	return nil, edgeToOutput(*edge), nil
}

func (s *Server) handleRemoveDependency(_ context.Context, _ *gomcp.CallToolRequest, input removeDependencyInput) (*gomcp.CallToolResult, removeDependencyOutput, error) {
	if input.EdgeID == "" {
		return errorResult("edge_id is required"), removeDependencyOutput{}, nil
	}

	if err := s.ganttMgr.RemoveDependency(s.workspace(input.Workspace), input.EdgeID); err != nil {
		return errorResult(fmt.Sprintf("removing dependency %s: %s", input.EdgeID, err)), removeDependencyOutput{}, nil
	}

	return nil, removeDependencyOutput{
		Message: fmt.Sprintf("dependency %s removed", input.EdgeID),
	}, nil
}

func (s *Server) handleListBlockers(_ context.Context, _ *gomcp.CallToolRequest, input listEdgesInput) (*gomcp.CallToolResult, listEdgesOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), listEdgesOutput{}, nil
	}

	edges, err := s.ganttMgr.Blockers(s.workspace(input.Workspace), input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("listing blockers for %s: %s", input.TaskID, err)), listEdgesOutput{}, nil
	}
	return nil, edgesToOutput(edges), nil
}

func (s *Server) handleListDependents(_ context.Context, _ *gomcp.CallToolRequest, input listEdgesInput) (*gomcp.CallToolResult, listEdgesOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), listEdgesOutput{}, nil
	}

	edges, err := s.ganttMgr.Dependents(s.workspace(input.Workspace), input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("listing dependents for %s: %s", input.TaskID, err)), listEdgesOutput{}, nil
	}
	return nil, edgesToOutput(edges), nil
}

func (s *Server) handleUpdateTimeline(_ context.Context, _ *gomcp.CallToolRequest, input updateTimelineInput) (*gomcp.CallToolResult, updateTimelineOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), updateTimelineOutput{}, nil
	}
	if input.StartDate == "" && input.DueDate == "" {
		return errorResult("at least one of start_date or due_date is required"), updateTimelineOutput{}, nil
	}

	start, err := parseDate(input.StartDate)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing start_date: %s", err)), updateTimelineOutput{}, nil
	}
	due, err := parseDate(input.DueDate)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing due_date: %s", err)), updateTimelineOutput{}, nil
	}

	mutations, err := s.ganttMgr.UpdateTimeline(s.workspace(input.Workspace), input.TaskID, start, due)
	if err != nil {
		return errorResult(fmt.Sprintf("updating timeline for %s: %s", input.TaskID, err)), updateTimelineOutput{}, nil
	}

	out := updateTimelineOutput{
		Mutations: make([]mutationOutput, len(mutations)),
		Count:     len(mutations),
	}
	for i, m := range mutations {
		out.Mutations[i] = mutationOutput{
			TaskID:   m.TaskID,
			OldStart: formatDate(m.OldStart),
			OldDue:   formatDate(m.OldDue),
			NewStart: formatDate(m.NewStart),
			NewDue:   formatDate(m.NewDue),
		}
	}
	return nil, out, nil
}

func (s *Server) handleToggleMilestone(_ context.Context, _ *gomcp.CallToolRequest, input toggleMilestoneInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.ganttMgr.ToggleMilestone(s.workspace(input.Workspace), input.TaskID, input.Enable)
	if err != nil {
		return errorResult(fmt.Sprintf("toggling milestone for %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

// --- Helpers ---

func (s *Server) workspace(ws string) string {
	if ws == "" {
		return s.defaultWorkspace
	}
	return ws
}

func taskToOutput(t *models.Task) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Workspace:   t.Workspace,
		Title:       t.Title,
		StartDate:   formatDate(t.StartDate),
		DueDate:     formatDate(t.DueDate),
		IsMilestone: t.IsMilestone,
		Created:     t.Created.Format(time.RFC3339),
		Updated:     t.Updated.Format(time.RFC3339),
	}
}

func edgeToOutput(e models.DependencyEdge) dependencyOutput {
	return dependencyOutput{
		ID:       e.ID,
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Type:     string(e.Type),
		Created:  e.Created.Format(time.RFC3339),
	}
}

func edgesToOutput(edges []models.DependencyEdge) listEdgesOutput {
	out := listEdgesOutput{
		Edges: make([]dependencyOutput, len(edges)),
		Count: len(edges),
	}
	for i, e := range edges {
		out.Edges[i] = edgeToOutput(e)
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
