package ui

import "github.com/charmbracelet/lipgloss"

const (
	accent    = lipgloss.Color("#FF8C42")
	accentAlt = lipgloss.Color("#FFB84D")
	muted     = lipgloss.Color("#6B7280")
	white     = lipgloss.Color("#FFFFFF")
	danger    = lipgloss.Color("#FF4757")
	highlight = lipgloss.Color("#BDD7EE")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(white)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(accentAlt).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accentAlt).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	// Report tables mirror the exported workbook: header and Grand Total
	// rows stand out, everything is centered.
	TableTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentAlt)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Center)

	HeaderCellStyle = CellStyle.
			Bold(true).
			Foreground(lipgloss.Color("#1F2937")).
			Background(highlight)

	TotalCellStyle = CellStyle.
			Bold(true).
			Foreground(accent)
)
