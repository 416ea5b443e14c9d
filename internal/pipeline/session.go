// Package pipeline drives one report run: upload, status corrections, date
// selection, report generation and export. All state lives in a
// session.Store so a run can be reset or inspected between steps.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/nconklindev/qareport/internal/clean"
	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/dates"
	"github.com/nconklindev/qareport/internal/filter"
	"github.com/nconklindev/qareport/internal/logging"
	"github.com/nconklindev/qareport/internal/report"
	"github.com/nconklindev/qareport/internal/session"
	"github.com/nconklindev/qareport/internal/types"
	"github.com/nconklindev/qareport/internal/validate"
	"github.com/nconklindev/qareport/internal/workbook"
)

// ErrOutOfOrder is returned when a step runs before the one it depends on.
var ErrOutOfOrder = errors.New("step requires an earlier step")

const (
	keyFile        = "file"
	keyHeaders     = "headers"
	keyRaw         = "raw_records"
	keyIssues      = "issues"
	keySuggestions = "suggestions"
	keyChoices     = "choices"
	keyApplied     = "applied"
	keyRecords     = "records"
	keyIndex       = "date_index"
	keyDate        = "date"
	keyReports     = "reports"
	keySummary     = "summary"
)

var allKeys = []string{
	keyFile, keyHeaders, keyRaw, keyIssues, keySuggestions, keyChoices,
	keyApplied, keyRecords, keyIndex, keyDate, keyReports, keySummary,
}

// Session is the context every workflow step runs against.
type Session struct {
	store     session.Store
	cfg       *config.Config
	log       logrus.FieldLogger
	validator *validate.Validator
}

// New builds a Session over store. A nil cfg uses config.Default and a nil
// log discards output.
func New(store session.Store, cfg *config.Config, log logrus.FieldLogger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.Discard()
	}
	v := validate.New(cfg.AcceptedStatuses)
	v.Cutoff = cfg.FuzzyCutoff
	v.MaxFuzzy = cfg.FuzzyMax
	return &Session{store: store, cfg: cfg, log: log, validator: v}
}

// CheckUpload rejects a file by name and size before it is read.
func (s *Session) CheckUpload(name string, size int64) error {
	return workbook.CheckUpload(name, size, s.cfg.MaxFileBytes(), s.cfg.Extensions)
}

// Loaded describes a parsed upload.
type Loaded struct {
	Name    string
	Headers types.Headers
	Records int
	Issues  []types.Issue
}

// Load checks, reads and parses an uploaded workbook, replacing any previous
// run, and finds the Lead Status issues to resolve.
func (s *Session) Load(name string, data []byte) (*Loaded, error) {
	s.Reset()
	log := s.log.WithField("file", name)

	if err := s.CheckUpload(name, int64(len(data))); err != nil {
		return nil, err
	}
	sheets, err := workbook.ReadSheets(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	headers, records, err := workbook.Parse(sheets)
	if err != nil {
		return nil, err
	}

	issues, suggestions := s.validator.FindIssues(records)
	log.WithFields(logrus.Fields{
		"sheets":  len(sheets),
		"records": len(records),
		"issues":  len(issues),
	}).Info("workbook loaded")

	s.store.Set(keyFile, name)
	s.store.Set(keyHeaders, headers)
	s.store.Set(keyRaw, records)
	s.store.Set(keyIssues, issues)
	s.store.Set(keySuggestions, suggestions)
	s.store.Set(keyChoices, make(types.CorrectionMap))

	return &Loaded{Name: name, Headers: headers, Records: len(records), Issues: issues}, nil
}

// FileName is the name of the loaded workbook.
func (s *Session) FileName() string {
	name, _ := session.Value[string](s.store, keyFile)
	return name
}

// Headers are the merged headers of the loaded workbook.
func (s *Session) Headers() types.Headers {
	h, _ := session.Value[types.Headers](s.store, keyHeaders)
	return h
}

// Issues are the invalid Lead Status values of the loaded workbook.
func (s *Session) Issues() []types.Issue {
	issues, _ := session.Value[[]types.Issue](s.store, keyIssues)
	return issues
}

// Suggestions maps each issue with an auto-suggestion to it.
func (s *Session) Suggestions() types.CorrectionMap {
	m, _ := session.Value[types.CorrectionMap](s.store, keySuggestions)
	return maps.Clone(m)
}

// Choices are the corrections picked so far.
func (s *Session) Choices() types.CorrectionMap {
	m, _ := session.Value[types.CorrectionMap](s.store, keyChoices)
	return maps.Clone(m)
}

// Choose records that original should become replacement. Choosing the
// original itself keeps the value as is.
func (s *Session) Choose(original, replacement string) error {
	choices, ok := session.Value[types.CorrectionMap](s.store, keyChoices)
	if !ok {
		return fmt.Errorf("choose correction: %w", ErrOutOfOrder)
	}
	if !slices.ContainsFunc(s.Issues(), func(i types.Issue) bool { return i.Original == original }) {
		return fmt.Errorf("choose correction: %q is not an invalid Lead Status", original)
	}
	if replacement == original {
		return s.Decline(original)
	}
	if !slices.Contains(s.cfg.AcceptedStatuses, replacement) {
		return types.Invalid(types.ErrInvalidStatus, "%q is not an allowed Lead Status. Allowed values: %v", replacement, s.cfg.AcceptedStatuses)
	}
	choices = maps.Clone(choices)
	choices[original] = replacement
	s.store.Set(keyChoices, choices)
	return nil
}

// Decline drops any correction picked for original.
func (s *Session) Decline(original string) error {
	choices, ok := session.Value[types.CorrectionMap](s.store, keyChoices)
	if !ok {
		return fmt.Errorf("decline correction: %w", ErrOutOfOrder)
	}
	choices = maps.Clone(choices)
	delete(choices, original)
	s.store.Set(keyChoices, choices)
	return nil
}

// AcceptSuggestions picks every auto-suggestion and returns how many there were.
func (s *Session) AcceptSuggestions() (int, error) {
	suggestions := s.Suggestions()
	for original, repl := range suggestions {
		if err := s.Choose(original, repl); err != nil {
			return 0, err
		}
	}
	return len(suggestions), nil
}

// ApplyCorrections applies the picked corrections, then validates and cleans
// the result. It returns the number of records changed.
func (s *Session) ApplyCorrections() (int, error) {
	raw, ok := session.Value[[]types.Record](s.store, keyRaw)
	if !ok {
		return 0, fmt.Errorf("apply corrections: %w", ErrOutOfOrder)
	}
	choices := s.Choices()
	records, changed := validate.ApplyCorrections(raw, choices)
	s.log.WithFields(logrus.Fields{
		"corrections": len(choices),
		"changed":     changed,
	}).Info("corrections applied")

	if err := s.finish(records, choices); err != nil {
		return 0, err
	}
	return changed, nil
}

// SkipCorrections continues with the records as uploaded.
func (s *Session) SkipCorrections() error {
	raw, ok := session.Value[[]types.Record](s.store, keyRaw)
	if !ok {
		return fmt.Errorf("skip corrections: %w", ErrOutOfOrder)
	}
	return s.finish(raw, nil)
}

func (s *Session) finish(records []types.Record, applied types.CorrectionMap) error {
	if err := validate.Columns(s.Headers(), s.cfg.RequiredColumns); err != nil {
		return err
	}
	if err := s.validator.Statuses(records); err != nil {
		return err
	}
	cleaned := clean.Records(records)
	s.log.WithFields(logrus.Fields{
		"records":    len(cleaned),
		"dq_reasons": validate.DQReasons(cleaned),
	}).Info("records validated")

	s.store.Set(keyApplied, applied)
	s.store.Set(keyRecords, cleaned)
	return nil
}

// Records are the validated, cleaned records.
func (s *Session) Records() []types.Record {
	r, _ := session.Value[[]types.Record](s.store, keyRecords)
	return r
}

// CorrectionSummary describes the corrections that were applied.
func (s *Session) CorrectionSummary() string {
	applied, _ := session.Value[types.CorrectionMap](s.store, keyApplied)
	return validate.Summary(applied)
}

// DateColumn returns the detected audit date column. When none is found it
// returns "" and the headers the user may pick from instead.
func (s *Session) DateColumn() (string, []string) {
	headers := s.Headers()
	if col, ok := dates.DetectColumn(headers); ok {
		return col, nil
	}
	return "", dates.ColumnCandidates(headers)
}

// SelectDateColumn indexes the cleaned records on col and returns the
// distinct dates found, oldest first.
func (s *Session) SelectDateColumn(col string) ([]civil.Date, error) {
	records, ok := session.Value[[]types.Record](s.store, keyRecords)
	if !ok {
		return nil, fmt.Errorf("select date column: %w", ErrOutOfOrder)
	}
	name, ok := s.Headers().Find(col)
	if !ok {
		return nil, types.Invalid(types.ErrMissingColumns, "Column %q not found", col)
	}

	idx := filter.NewIndex(records, name)
	log := s.log.WithField("column", name)
	if n := idx.Failures(); n > 0 {
		log.WithField("failures", n).Warn("some dates could not be parsed")
	}
	if idx.Parsed() == 0 {
		return nil, types.Invalid(types.ErrNoDates, "No valid dates found in column %q", name)
	}

	unique := idx.UniqueDates()
	log.WithFields(logrus.Fields{
		"parsed": idx.Parsed(),
		"dates":  len(unique),
	}).Info("date column indexed")

	s.store.Set(keyIndex, idx)
	s.store.Delete(keyDate)
	s.store.Delete(keyReports)
	s.store.Delete(keySummary)
	return unique, nil
}

// SelectDate sets the report date.
func (s *Session) SelectDate(d civil.Date) error {
	if _, ok := session.Value[*filter.Index](s.store, keyIndex); !ok {
		return fmt.Errorf("select date: %w", ErrOutOfOrder)
	}
	if !d.IsValid() {
		return types.Invalid(types.ErrNoDates, "Invalid report date")
	}
	s.store.Set(keyDate, d)
	return nil
}

// Date is the selected report date.
func (s *Session) Date() (civil.Date, bool) {
	return session.Value[civil.Date](s.store, keyDate)
}

// OptionalColumns reports which optional tag columns the workbook has.
func (s *Session) OptionalColumns() map[string]bool {
	return clean.OptionalColumns(s.Headers(), s.cfg.OptionalColumns)
}

// Options selects the optional reports.
type Options struct {
	Segments bool
	Personas bool
}

// Generate builds the report tables for the selected date. Optional reports
// are skipped when their column is missing.
func (s *Session) Generate(opts Options) (*report.Set, report.Summary, error) {
	idx, ok := session.Value[*filter.Index](s.store, keyIndex)
	if !ok {
		return nil, report.Summary{}, fmt.Errorf("generate reports: %w", ErrOutOfOrder)
	}
	d, ok := s.Date()
	if !ok {
		return nil, report.Summary{}, fmt.Errorf("generate reports: %w", ErrOutOfOrder)
	}

	available := s.OptionalColumns()
	in := report.Input{
		Date:     idx.Exact(d),
		MTD:      idx.MonthToDate(d),
		All:      s.Records(),
		Segments: opts.Segments && available[types.ColSegment],
		Personas: opts.Personas && available[types.ColPersona],
	}
	set := report.Generate(in)
	summary := report.Summarize(in.Date, in.MTD)

	log := s.log.WithFields(logrus.Fields{
		"column":  idx.Column(),
		"indexed": idx.Len(),
		"date":    dates.Display(d),
		"daily":   summary.Daily.Total,
		"mtd":     summary.MTD.Total,
		"tables":  set.Len(),
	})
	if start, end, ok := idx.Window(d); ok {
		log = log.WithField("mtd_window", dates.Display(start)+".."+dates.Display(end))
	}
	log.Info("reports generated")

	s.store.Set(keyReports, set)
	s.store.Set(keySummary, summary)
	return set, summary, nil
}

// Reports returns the last generated set.
func (s *Session) Reports() (*report.Set, bool) {
	return session.Value[*report.Set](s.store, keyReports)
}

// Export renders the generated reports for campaign and returns the file name
// and workbook bytes.
func (s *Session) Export(campaign string) (string, []byte, error) {
	set, ok := s.Reports()
	if !ok {
		return "", nil, fmt.Errorf("export: %w", ErrOutOfOrder)
	}
	d, _ := s.Date()
	campaign, err := report.ValidateCampaignID(campaign)
	if err != nil {
		return "", nil, err
	}

	data, err := workbook.NewExporter().Export(set.Ordered(), workbook.Meta{Heading: report.Title(campaign, d)})
	if err != nil {
		return "", nil, fmt.Errorf("export: %w", err)
	}
	name := report.FileName(campaign, d)
	s.log.WithFields(logrus.Fields{
		"output": name,
		"bytes":  len(data),
	}).Info("report exported")
	return name, data, nil
}

// Reset clears the run.
func (s *Session) Reset() {
	for _, k := range allKeys {
		s.store.Delete(k)
	}
}
