package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelTimeline = iota
	panelGraph
	panelMetrics
	panelCount
)

type dashboardModel struct {
	workspace   string
	activePanel int
	width       int
	height      int

	// Data.
	tasks   []models.Task
	edges   []edgeRow
	metrics *metricsSnapshot

	// State.
	loading bool
	err     error
}

type edgeRow struct {
	id     string
	source string
	target string
	kind   string
}

type metricsSnapshot struct {
	edgesAdded      int
	edgesRemoved    int
	timelineUpdates int
	cascades        int
	tasksShifted    int
}

// dashboardDataMsg carries loaded data back to the model.
type dashboardDataMsg struct {
	tasks   []models.Task
	edges   []edgeRow
	metrics *metricsSnapshot
	err     error
}

// Style definitions.
var (
	dashTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	dashPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	dashActivePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	dashHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	dashHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(workspace string) dashboardModel {
	return dashboardModel{
		workspace:   workspace,
		activePanel: panelTimeline,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadDashboardData(m.workspace)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadDashboardData(m.workspace)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dashboardDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.tasks = msg.tasks
		m.edges = msg.edges
		m.metrics = msg.metrics
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}
	if m.loading {
		return "Loading workspace data..."
	}

	title := dashTitleStyle.Render(fmt.Sprintf("cascade · workspace %s", m.workspace))

	panels := []string{
		m.renderPanel(panelTimeline, "Timeline", m.renderTimeline()),
		m.renderPanel(panelGraph, "Dependencies", m.renderGraph()),
		m.renderPanel(panelMetrics, "Activity", m.renderMetrics()),
	}

	help := dashHelpStyle.Render("tab: switch panel • r: reload • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, panels...),
		help,
	)
}

func (m dashboardModel) renderPanel(idx int, header, body string) string {
	style := dashPanelStyle
	if m.activePanel == idx {
		style = dashActivePanelStyle
	}
	return style.Render(dashHeaderStyle.Render(header) + "\n" + body)
}

// renderTimeline draws each scheduled task as a bar on a shared date axis.
func (m dashboardModel) renderTimeline() string {
	var scheduled []models.Task
	var minDate, maxDate *time.Time
	for _, t := range m.tasks {
		if t.StartDate == nil && t.DueDate == nil {
			continue
		}
		scheduled = append(scheduled, t)
		for _, d := range []*time.Time{t.StartDate, t.DueDate} {
			if d == nil {
				continue
			}
			if minDate == nil || d.Before(*minDate) {
				minDate = d
			}
			if maxDate == nil || d.After(*maxDate) {
				maxDate = d
			}
		}
	}
	if len(scheduled) == 0 {
		return "No scheduled tasks."
	}

	const barWidth = 30
	span := maxDate.Sub(*minDate)
	if span <= 0 {
		span = 24 * time.Hour
	}
	col := func(d time.Time) int {
		c := int(float64(barWidth-1) * float64(d.Sub(*minDate)) / float64(span))
		if c < 0 {
			c = 0
		}
		if c > barWidth-1 {
			c = barWidth - 1
		}
		return c
	}

	var b strings.Builder
	for _, t := range scheduled {
		bar := []rune(strings.Repeat("·", barWidth))
		switch {
		case t.IsMilestone && t.StartDate != nil:
			bar[col(*t.StartDate)] = '◆'
		case t.StartDate != nil && t.DueDate != nil:
			from, to := col(*t.StartDate), col(*t.DueDate)
			for i := from; i <= to; i++ {
				bar[i] = '█'
			}
		case t.StartDate != nil:
			bar[col(*t.StartDate)] = '▐'
		case t.DueDate != nil:
			bar[col(*t.DueDate)] = '▌'
		}
		fmt.Fprintf(&b, "%-12s %s\n", t.ID, string(bar))
	}
	fmt.Fprintf(&b, "%-12s %-15s%15s", "", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
	return b.String()
}

func (m dashboardModel) renderGraph() string {
	if len(m.edges) == 0 {
		return "No dependency edges."
	}
	var b strings.Builder
	for _, e := range m.edges {
		fmt.Fprintf(&b, "%s --%s--> %s\n", e.source, e.kind, e.target)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderMetrics() string {
	if m.metrics == nil {
		return "No activity recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Edges added:      %d\n", m.metrics.edgesAdded)
	fmt.Fprintf(&b, "Edges removed:    %d\n", m.metrics.edgesRemoved)
	fmt.Fprintf(&b, "Timeline updates: %d\n", m.metrics.timelineUpdates)
	fmt.Fprintf(&b, "Cascades:         %d\n", m.metrics.cascades)
	fmt.Fprintf(&b, "Tasks shifted:    %d", m.metrics.tasksShifted)
	return b.String()
}

// loadDashboardData loads tasks, edges, and metrics for the workspace.
func loadDashboardData(workspace string) tea.Cmd {
	return func() tea.Msg {
		if GanttMgr == nil {
			return dashboardDataMsg{err: fmt.Errorf("gantt manager not initialized")}
		}

		tasks, err := GanttMgr.ListTasks(workspace)
		if err != nil {
			return dashboardDataMsg{err: err}
		}

		var edges []edgeRow
		for _, t := range tasks {
			outgoing, err := GanttMgr.Dependents(workspace, t.ID)
			if err != nil {
				return dashboardDataMsg{err: err}
			}
			for _, e := range outgoing {
				edges = append(edges, edgeRow{
					id:     e.ID,
					source: e.SourceID,
					target: e.TargetID,
					kind:   string(e.Type),
				})
			}
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i].id < edges[j].id })

		var metrics *metricsSnapshot
		if MetricsCalc != nil {
			if calc, err := MetricsCalc.Calculate(workspace, time.Now().UTC().AddDate(0, 0, -30)); err == nil {
				metrics = &metricsSnapshot{
					edgesAdded:      calc.EdgesAdded,
					edgesRemoved:    calc.EdgesRemoved,
					timelineUpdates: calc.TimelineUpdates,
					cascades:        calc.Cascades,
					tasksShifted:    calc.TasksShifted,
				}
			}
		}

		return dashboardDataMsg{tasks: tasks, edges: edges, metrics: metrics}
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive timeline and dependency dashboard",
	Long: `Open an interactive dashboard showing the workspace timeline, the
dependency graph, and recent cascade activity.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(newDashboardModel(workspaceFlag(cmd)), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().String("workspace", "", "Workspace name (default from .cascadeconfig)")
	rootCmd.AddCommand(dashboardCmd)
}
