package ui

import (
	"os"
	"path/filepath"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/nconklindev/qareport/internal/browse"
	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/pipeline"
	"github.com/nconklindev/qareport/internal/report"
	"github.com/nconklindev/qareport/internal/types"
)

type state int

const (
	stateBrowse state = iota
	stateFilePicker
	stateLoading
	stateCorrections
	stateDateColumn
	stateDate
	stateOptions
	stateReport
	stateCampaign
	stateComplete
	stateError
)

// level is the depth reached in the Month/Campaign/File browser.
type level int

const (
	levelMonth level = iota
	levelCampaign
	levelFile
)

// choice is one selectable answer for a Lead Status issue.
type choice struct {
	label string
	value string
}

type Model struct {
	state state
	cfg   *config.Config
	log   logrus.FieldLogger
	sess  *pipeline.Session

	browser  browse.Browser
	browsing bool
	level    level
	folders  []string
	files    []browse.File
	month    string
	campaign string

	filepicker filepicker.Model
	spinner    spinner.Model
	progress   progress.Model
	input      textinput.Model
	viewport   viewport.Model

	cursor   int
	status   string
	fileName string

	issues   []types.Issue
	issueIdx int
	choices  []choice

	dateCols   []string
	dateColumn string
	dates      []civil.Date
	dateCursor int

	optional []string
	selected map[string]bool

	set     *report.Set
	summary report.Summary

	// pending is the command behind the spinner and resume the state it
	// was started from; a failed command keeps both so it can be retried.
	pending tea.Cmd
	resume  state
	retry   tea.Cmd
	back    state

	output string
	err    error
	width  int
	height int
}

// New builds the interactive model. When cfg.BaseDir exists files are picked
// through the Month/Campaign/File browser, otherwise with a file picker.
func New(cfg *config.Config, sess *pipeline.Session, log logrus.FieldLogger) Model {
	fp := filepicker.New()
	fp.AllowedTypes = cfg.Extensions
	fp.CurrentDirectory, _ = os.Getwd()

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(accentAlt)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(accentAlt)
	fp.Styles.File = lipgloss.NewStyle().Foreground(white)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	ti := textinput.New()
	ti.Placeholder = "e.g. 6399"
	ti.CharLimit = 32
	ti.Width = 24

	m := Model{
		state:      stateFilePicker,
		cfg:        cfg,
		log:        log,
		sess:       sess,
		filepicker: fp,
		spinner:    sp,
		progress:   progress.New(progress.WithGradient("#FF8C42", "#FF9F5A"), progress.WithWidth(30)),
		input:      ti,
		viewport:   viewport.New(80, 20),
		selected:   make(map[string]bool),
	}

	if cfg.BaseDir != "" {
		local := browse.NewLocal(cfg.BaseDir, cfg.Extensions, log)
		if local.Available() {
			m.browser = local
			m.browsing = true
			m.state = stateBrowse
		} else {
			log.WithField("base_dir", cfg.BaseDir).Warn("base directory not accessible, using file picker")
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.browsing {
		return listFolders(m.browser, levelMonth)
	}
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, subtitle and help
		m.filepicker.SetHeight(max(msg.Height-14, 5))
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 5)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case foldersMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.level = msg.level
		m.folders = msg.names
		m.cursor = 0
		return m, nil

	case filesMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.level = levelFile
		m.files = msg.files
		m.cursor = 0
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.issues = msg.loaded.Issues
		m.issueIdx = 0
		if len(m.issues) == 0 {
			return m.working("Validating records...", applyCorrections(m.sess))
		}
		m.state = stateCorrections
		m.setChoices()
		return m, nil

	case validatedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		col, candidates := m.sess.DateColumn()
		if col != "" {
			return m.working("Reading dates...", selectDateColumn(m.sess, col))
		}
		m.dateCols = candidates
		m.cursor = 0
		m.state = stateDateColumn
		return m, nil

	case datesMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.dateColumn = msg.column
		m.dates = msg.dates
		m.cursor = len(msg.dates) - 1
		m.state = stateDate
		return m, nil

	case generatedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.set = msg.set
		m.summary = msg.summary
		m.state = stateReport
		m.viewport.SetContent(m.reportContent())
		m.viewport.GotoTop()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			if types.IsValidation(msg.err) {
				m.status = msg.err.Error()
				m.state = stateCampaign
				return m, m.input.Focus()
			}
			return m.fail(msg.err)
		}
		m.output = msg.path
		m.state = stateComplete
		return m, nil
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.pickFile(path)
		}
		return m, cmd
	case stateCampaign:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case stateReport:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.state {
	case stateBrowse:
		return m.browseKey(key)

	case stateFilePicker:
		if key == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.pickFile(path)
		}
		return m, cmd

	case stateCorrections:
		return m.correctionKey(key)

	case stateDateColumn:
		switch key {
		case "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(m.dateCols))
		case "enter":
			if len(m.dateCols) > 0 {
				return m.working("Reading dates...", selectDateColumn(m.sess, m.dateCols[m.cursor]))
			}
		}

	case stateDate:
		switch key {
		case "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(m.dates))
		case "enter":
			return m.pickDate()
		}

	case stateOptions:
		switch key {
		case "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(m.optional))
		case " ":
			col := m.optional[m.cursor]
			m.selected[col] = !m.selected[col]
		case "enter":
			return m.working("Generating reports...", generate(m.sess, m.dates[m.dateCursor], m.options()))
		}

	case stateReport:
		switch key {
		case "q":
			return m, tea.Quit
		case "e":
			m.status = ""
			m.input.SetValue(browse.CampaignID(m.campaign))
			m.state = stateCampaign
			return m, m.input.Focus()
		case "n":
			return m.restart()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case stateCampaign:
		switch key {
		case "esc":
			m.input.Blur()
			m.state = stateReport
			return m, nil
		case "enter":
			m.input.Blur()
			return m.working("Exporting report...", export(m.sess, m.input.Value(), m.cfg))
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case stateComplete:
		switch key {
		case "n":
			return m.restart()
		case "q", "enter", "esc":
			return m, tea.Quit
		}

	case stateError:
		switch key {
		case "q":
			return m, tea.Quit
		case "r":
			if m.retry != nil {
				cmd := m.retry
				m.err = nil
				return m.working(m.status, cmd)
			}
		case "esc":
			if !types.IsValidation(m.err) {
				return m.goBack()
			}
			return m.restart()
		case "enter":
			return m.restart()
		}
	}
	return m, nil
}

func (m Model) browseKey(key string) (tea.Model, tea.Cmd) {
	n := len(m.folders)
	if m.level == levelFile {
		n = len(m.files)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k", "down", "j":
		m.cursor = moveCursor(m.cursor, key, n)
	case "backspace", "esc", "left", "h":
		switch m.level {
		case levelCampaign:
			return m, listFolders(m.browser, levelMonth)
		case levelFile:
			return m, listFolders(m.browser, levelCampaign, m.month)
		}
	case "f":
		m.state = stateFilePicker
		return m, m.filepicker.Init()
	case "enter", "right", "l":
		if n == 0 {
			return m, nil
		}
		switch m.level {
		case levelMonth:
			m.month = m.folders[m.cursor]
			return m, listFolders(m.browser, levelCampaign, m.month)
		case levelCampaign:
			m.campaign = m.folders[m.cursor]
			return m, listFiles(m.browser, m.month, m.campaign)
		case levelFile:
			f := m.files[m.cursor]
			return m.load(f.Name, f.Size, func() ([]byte, error) { return m.browser.ReadBytes(f.Path) })
		}
	}
	return m, nil
}

func (m Model) correctionKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k", "down", "j":
		m.cursor = moveCursor(m.cursor, key, len(m.choices))
	case "a":
		if _, err := m.sess.AcceptSuggestions(); err != nil {
			return m.fail(err)
		}
		return m.working("Applying corrections...", applyCorrections(m.sess))
	case "s":
		for _, issue := range m.issues {
			if err := m.sess.Decline(issue.Original); err != nil {
				return m.fail(err)
			}
		}
		return m.working("Validating records...", skipCorrections(m.sess))
	case "enter":
		issue := m.issues[m.issueIdx]
		if err := m.sess.Choose(issue.Original, m.choices[m.cursor].value); err != nil {
			return m.fail(err)
		}
		m.issueIdx++
		if m.issueIdx >= len(m.issues) {
			return m.working("Applying corrections...", applyCorrections(m.sess))
		}
		m.setChoices()
	}
	return m, nil
}

// setChoices lists the answers for the current issue: the suggestion first,
// then similar values, the remaining accepted values and finally keeping
// the value unchanged.
func (m *Model) setChoices() {
	issue := m.issues[m.issueIdx]
	var out []choice
	seen := make(map[string]bool)
	add := func(label, value string) {
		if seen[value] {
			return
		}
		seen[value] = true
		out = append(out, choice{label: label, value: value})
	}

	if issue.AutoSuggestion != "" {
		add("⭐ "+issue.AutoSuggestion+" (suggested)", issue.AutoSuggestion)
	}
	for _, v := range issue.FuzzyMatches {
		add(v+" (similar)", v)
	}
	for _, v := range issue.ValidOptions {
		add(v, v)
	}
	add("Keep as is", issue.Original)

	m.choices = out
	m.cursor = 0
}

func (m Model) pickDate() (tea.Model, tea.Cmd) {
	if len(m.dates) == 0 {
		return m, nil
	}
	m.optional = nil
	for col, ok := range m.sess.OptionalColumns() {
		if ok {
			m.optional = append(m.optional, col)
		}
	}
	slices.Sort(m.optional)
	if len(m.optional) == 0 {
		return m.working("Generating reports...", generate(m.sess, m.dates[m.cursor], pipeline.Options{}))
	}

	m.dateCursor = m.cursor
	m.cursor = 0
	for _, col := range m.optional {
		m.selected[col] = true
	}
	m.state = stateOptions
	return m, nil
}

func (m Model) options() pipeline.Options {
	return pipeline.Options{
		Segments: m.selected[types.ColSegment],
		Personas: m.selected[types.ColPersona],
	}
}

func (m Model) pickFile(path string) (tea.Model, tea.Cmd) {
	info, err := os.Stat(path)
	if err != nil {
		return m.fail(err)
	}
	return m.load(filepath.Base(path), info.Size(), func() ([]byte, error) { return os.ReadFile(path) })
}

func (m Model) load(name string, size int64, read func() ([]byte, error)) (tea.Model, tea.Cmd) {
	m.fileName = name
	return m.working("Loading "+name+"...", loadFile(m.sess, name, size, read))
}

// working shows the spinner while cmd runs.
func (m Model) working(status string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.state != stateLoading && m.state != stateError {
		m.resume = m.state
	}
	m.pending = cmd
	m.status = status
	m.state = stateLoading
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// fail shows err. Validation problems are shown verbatim; anything else is
// logged and shown generically, and the session is kept so the failed step
// can be retried or left with esc.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.retry, m.back = nil, m.state
	if m.state == stateLoading {
		m.retry, m.back = m.pending, m.resume
	}
	m.pending = nil
	m.err = err
	m.state = stateError
	if types.IsValidation(err) {
		m.retry = nil
		m.log.WithError(err).WithField("file", m.fileName).Warn("validation failed")
	} else {
		m.log.WithError(err).WithField("file", m.fileName).Error("processing failed")
	}
	return m, nil
}

// goBack leaves the error screen for the state the failed step started from.
func (m Model) goBack() (tea.Model, tea.Cmd) {
	m.err = nil
	m.retry = nil
	m.state = m.back
	switch m.back {
	case stateCampaign:
		return m, m.input.Focus()
	case stateFilePicker:
		return m, m.filepicker.Init()
	}
	return m, nil
}

// restart drops the run and returns to file selection.
func (m Model) restart() (tea.Model, tea.Cmd) {
	m.sess.Reset()
	m.err = nil
	m.set = nil
	m.issues = nil
	m.dates = nil
	m.output = ""
	m.retry = nil
	m.pending = nil
	m.status = ""
	m.selected = make(map[string]bool)
	m.cursor = 0
	if m.browsing {
		m.state = stateBrowse
		if m.level == levelFile {
			return m, listFiles(m.browser, m.month, m.campaign)
		}
		return m, listFolders(m.browser, levelMonth)
	}
	m.state = stateFilePicker
	return m, m.filepicker.Init()
}

func moveCursor(cursor int, key string, n int) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			cursor--
		}
	case "down", "j":
		if cursor < n-1 {
			cursor++
		}
	}
	return cursor
}
