package cli

import (
	"fmt"
	"strings"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

// Shared table styles.
var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	milestoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	shiftedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderTaskTable renders tasks as an aligned, styled table.
func renderTaskTable(tasks []models.Task) string {
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-12s %-10s  %-10s  %-30s", "ID", "START", "DUE", "TITLE")))
	b.WriteString("\n")
	for _, t := range tasks {
		line := fmt.Sprintf("%-12s %-10s  %-10s  %-30s",
			t.ID,
			formatDateOrDash(t.StartDate),
			formatDateOrDash(t.DueDate),
			t.Title,
		)
		if t.IsMilestone {
			line = milestoneStyle.Render(line + "  ◆")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderMutationTable renders the ordered mutation list of a cascade. The
// first row is the externally requested change; later rows are the shifts
// the cascade applied to keep every constraint satisfied.
func renderMutationTable(mutations []models.DateMutation) string {
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-12s %-23s  %-23s", "TASK", "BEFORE", "AFTER")))
	b.WriteString("\n")
	for i, m := range mutations {
		before := fmt.Sprintf("%s .. %s", formatDateOrDash(m.OldStart), formatDateOrDash(m.OldDue))
		after := fmt.Sprintf("%s .. %s", formatDateOrDash(m.NewStart), formatDateOrDash(m.NewDue))
		line := fmt.Sprintf("%-12s %-23s  %-23s", m.TaskID, before, after)
		if i == 0 {
			b.WriteString(line)
		} else {
			b.WriteString(shiftedStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(mutations) > 1 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d dependent task(s) shifted", len(mutations)-1)))
		b.WriteString("\n")
	}
	return b.String()
}
