package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nconklindev/qareport/internal/dates"
	"github.com/nconklindev/qareport/internal/report"
	"github.com/nconklindev/qareport/internal/types"
	"github.com/nconklindev/qareport/internal/workbook"
)

const appTitle = "📋 QA Report Generator"

func (m Model) View() string {
	switch m.state {
	case stateBrowse:
		return m.viewBrowse()
	case stateFilePicker:
		return m.viewFilePicker()
	case stateLoading:
		return m.viewLoading()
	case stateCorrections:
		return m.viewCorrections()
	case stateDateColumn:
		return m.viewDateColumn()
	case stateDate:
		return m.viewDate()
	case stateOptions:
		return m.viewOptions()
	case stateReport:
		return m.viewReport()
	case stateCampaign:
		return m.viewCampaign()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewBrowse() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(appTitle))
	s.WriteString("\n")

	var items []string
	switch m.level {
	case levelMonth:
		s.WriteString(SubtitleStyle.Render("Select a month"))
		items = m.folders
	case levelCampaign:
		s.WriteString(SubtitleStyle.Render("Select a campaign in " + m.month))
		items = m.folders
	case levelFile:
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Select a workbook in %s / %s (newest first)", m.month, m.campaign)))
		for _, f := range m.files {
			items = append(items, f.DisplayName())
		}
	}
	s.WriteString("\n")

	if len(items) == 0 {
		s.WriteString(UnselectedStyle.Render("Nothing here."))
		s.WriteString("\n")
	}
	s.WriteString(renderList(items, m.cursor))
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: open • backspace: up • f: file picker • q: quit"))

	return s.String()
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(appTitle))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a lead workbook (" + strings.Join(m.cfg.Extensions, ", ") + ")"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewLoading() string {
	return BoxStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
}

func (m Model) viewCorrections() string {
	var s strings.Builder
	issue := m.issues[m.issueIdx]

	s.WriteString(TitleStyle.Render(fmt.Sprintf("Lead Status Corrections (%d of %d)", m.issueIdx+1, len(m.issues))))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("File: " + m.fileName))
	s.WriteString("\n")
	s.WriteString(ErrorStyle.Render(fmt.Sprintf("'%s'", issue.Original)))
	s.WriteString(fmt.Sprintf(" is not a valid Lead Status (%d rows)\n\n", issue.Count))

	labels := make([]string, len(m.choices))
	for i, c := range m.choices {
		labels[i] = c.label
	}
	s.WriteString(renderList(labels, m.cursor))
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: choose • a: accept all suggestions • s: skip corrections • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewDateColumn() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Select the Date Column"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("No \"Audit Date\" column was found"))
	s.WriteString("\n")
	s.WriteString(renderList(m.dateCols, m.cursor))
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewDate() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Select the Report Date"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d dates found in %q", len(m.dates), m.dateColumn)))
	s.WriteString("\n")

	labels := make([]string, len(m.dates))
	for i, d := range m.dates {
		labels[i] = dates.Display(d)
	}
	s.WriteString(renderList(labels, m.cursor))
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewOptions() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Optional Reports"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Qualified counts by tag column"))
	s.WriteString("\n")

	for i, col := range m.optional {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		checked := " "
		if m.selected[col] {
			checked = "✓"
		}
		line := fmt.Sprintf("%s [%s] %s", cursor, checked, col)
		switch {
		case m.cursor == i:
			line = SelectedStyle.Render(line)
		case m.selected[col]:
			line = CheckedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle • enter: generate • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewReport() string {
	help := HelpStyle.Render("↑/↓: scroll • e: export • n: new file • q: quit")
	return m.viewport.View() + "\n" + help
}

// reportContent is everything shown in the report viewport.
func (m Model) reportContent() string {
	var s strings.Builder
	d, _ := m.sess.Date()

	s.WriteString(TitleStyle.Render("QA Reports for " + dates.Display(d)))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("File: " + m.fileName))
	s.WriteString("\n")
	s.WriteString(m.viewSummary())
	s.WriteString("\n")
	s.WriteString(SuccessStyle.Render(m.sess.CorrectionSummary()))
	s.WriteString("\n\n")

	if m.set != nil {
		for _, t := range m.set.Ordered() {
			s.WriteString(TableTitleStyle.Render(t.Title))
			s.WriteString("\n")
			s.WriteString(renderTable(t))
			s.WriteString("\n\n")
		}
	}
	return s.String()
}

func (m Model) viewSummary() string {
	row := func(label string, c report.Counts) string {
		rate := 0.0
		if c.Total > 0 {
			rate = float64(c.Qualified) / float64(c.Total)
		}
		return fmt.Sprintf("%-6s total %-5d qualified %-5d disqualified %-5d %s %s",
			label, c.Total, c.Qualified, c.Disqualified, m.progress.ViewAs(rate), c.QualRate())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		row("Daily", m.summary.Daily),
		row("MTD", m.summary.MTD),
	)
}

func (m Model) viewCampaign() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Export Report"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Campaign ID for the file name"))
	s.WriteString("\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render("enter: export • esc: back"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Report Exported!"))
	s.WriteString("\n\n")

	// Truncate paths if they're too long
	maxPathLen := max(m.width-20, 30)
	out := m.output
	if len(out) > maxPathLen {
		out = "..." + out[len(out)-maxPathLen+3:]
	}

	s.WriteString(fmt.Sprintf("Input:  %s\n", m.fileName))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s", out)))
	s.WriteString("\n")
	if m.set != nil {
		s.WriteString(fmt.Sprintf("Tables: %d\n", m.set.Len()))
	}
	s.WriteString(HelpStyle.Render("n: new file • any other key: exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	if types.IsValidation(m.err) {
		s.WriteString(m.err.Error())
	} else {
		s.WriteString("Something went wrong while processing the file.")
		if m.cfg.Log.File != "" {
			s.WriteString("\nDetails were written to " + m.cfg.Log.File + ".")
		}
	}
	s.WriteString("\n\n")
	help := "enter: choose another file • q: quit"
	if !types.IsValidation(m.err) {
		help = "esc: back • enter: choose another file • q: quit"
		if m.retry != nil {
			help = "r: retry • " + help
		}
	}
	s.WriteString(HelpStyle.Render(help))

	return BoxStyle.Render(s.String())
}

func renderList(items []string, cursor int) string {
	var s strings.Builder
	for i, item := range items {
		if i == cursor {
			s.WriteString(SelectedStyle.Render("> " + item))
		} else {
			s.WriteString(UnselectedStyle.Render("  " + item))
		}
		s.WriteString("\n")
	}
	return s.String()
}

// renderTable draws a report table with the same row emphasis as the export.
func renderTable(t types.ReportTable) string {
	rows := t.Strings()
	if len(rows) == 0 {
		return ""
	}
	hints := workbook.RowHints(t)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers(rows[0]...).
		Rows(rows[1:]...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderCellStyle
			case row+1 < len(hints) && hints[row+1] == workbook.HintGrandTotal:
				return TotalCellStyle
			}
			return CellStyle
		})
	return tbl.String()
}
