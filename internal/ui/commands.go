package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nconklindev/qareport/internal/browse"
	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/pipeline"
	"github.com/nconklindev/qareport/internal/report"
)

type foldersMsg struct {
	level level
	names []string
	err   error
}

type filesMsg struct {
	files []browse.File
	err   error
}

type loadedMsg struct {
	loaded *pipeline.Loaded
	err    error
}

type validatedMsg struct {
	changed int
	err     error
}

type datesMsg struct {
	column string
	dates  []civil.Date
	err    error
}

type generatedMsg struct {
	set     *report.Set
	summary report.Summary
	err     error
}

type exportedMsg struct {
	path string
	err  error
}

func listFolders(b browse.Browser, lvl level, path ...string) tea.Cmd {
	return func() tea.Msg {
		names, err := b.ListSubfolders(path...)
		return foldersMsg{level: lvl, names: names, err: err}
	}
}

func listFiles(b browse.Browser, path ...string) tea.Cmd {
	return func() tea.Msg {
		files, err := b.ListWorkbooks(path...)
		return filesMsg{files: files, err: err}
	}
}

// loadFile checks the upload by name and size, then reads it with read and
// hands it to the session.
func loadFile(s *pipeline.Session, name string, size int64, read func() ([]byte, error)) tea.Cmd {
	return func() tea.Msg {
		if err := s.CheckUpload(name, size); err != nil {
			return loadedMsg{err: err}
		}
		data, err := read()
		if err != nil {
			return loadedMsg{err: err}
		}
		loaded, err := s.Load(name, data)
		return loadedMsg{loaded: loaded, err: err}
	}
}

func applyCorrections(s *pipeline.Session) tea.Cmd {
	return func() tea.Msg {
		changed, err := s.ApplyCorrections()
		return validatedMsg{changed: changed, err: err}
	}
}

func skipCorrections(s *pipeline.Session) tea.Cmd {
	return func() tea.Msg {
		return validatedMsg{err: s.SkipCorrections()}
	}
}

func selectDateColumn(s *pipeline.Session, col string) tea.Cmd {
	return func() tea.Msg {
		dates, err := s.SelectDateColumn(col)
		return datesMsg{column: col, dates: dates, err: err}
	}
}

func generate(s *pipeline.Session, d civil.Date, opts pipeline.Options) tea.Cmd {
	return func() tea.Msg {
		if err := s.SelectDate(d); err != nil {
			return generatedMsg{err: err}
		}
		set, summary, err := s.Generate(opts)
		return generatedMsg{set: set, summary: summary, err: err}
	}
}

// export writes the report workbook into the configured output directory,
// read when the command runs.
func export(s *pipeline.Session, campaign string, cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		name, data, err := s.Export(campaign)
		if err != nil {
			return exportedMsg{err: err}
		}
		dir := cfg.OutputDir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportedMsg{err: fmt.Errorf("create output dir: %w", err)}
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return exportedMsg{path: path}
	}
}
