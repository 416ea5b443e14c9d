package pipeline

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/report"
	"github.com/nconklindev/qareport/internal/session"
	"github.com/nconklindev/qareport/internal/types"
)

var (
	qualifiedRows = [][]any{
		{"Lead Status", "Agent Name", "Audit Date", "DQ Reason", "Segment Tagging"},
		{"Qualified", "A", "2025-11-06", "-", "SMB"},
		{"Qual", "A", "06-Nov-25", nil, "SMB"},
		{"Qualified", "B", "2025-11-05", nil, "ENT"},
		{"Qualified", "B", 45967, nil, nil},
	}
	disqualifiedRows = [][]any{
		{"Lead Status", "Agent Name", "Audit Date", "DQ Reason"},
		{"Disqualified", "A", "2025-11-06", "invalid geo"},
		{"Disqualified", "B", "06/11/2025", "INVALID GEO"},
		{"Disqualified", "B", "2025-10-31", "wrong title"},
	}
	reportDate = civil.Date{Year: 2025, Month: time.November, Day: 6}
)

func buildWorkbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			r := row
			if err := f.SetSheetRow(name, cell, &r); err != nil {
				t.Fatal(err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func leadWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, map[string][][]any{
		"Qualified":    qualifiedRows,
		"Disqualified": disqualifiedRows,
	})
}

func newSession() (*Session, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return New(session.NewMemory(), config.Default(), log), hook
}

func TestEndToEnd(t *testing.T) {
	s, hook := newSession()

	loaded, err := s.Load("leads.xlsx", leadWorkbook(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Records != 7 {
		t.Errorf("Records = %d; want 7", loaded.Records)
	}
	if len(loaded.Issues) != 1 || loaded.Issues[0].Original != "Qual" || loaded.Issues[0].AutoSuggestion != "Qualified" {
		t.Fatalf("Issues = %+v; want one Qual issue suggesting Qualified", loaded.Issues)
	}

	n, err := s.AcceptSuggestions()
	if err != nil || n != 1 {
		t.Fatalf("AcceptSuggestions = %d, %v; want 1, nil", n, err)
	}
	changed, err := s.ApplyCorrections()
	if err != nil {
		t.Fatalf("ApplyCorrections failed: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d; want 1", changed)
	}
	if want := "Lead Status Corrections Applied:\n  • 'Qual' → 'Qualified'\n"; s.CorrectionSummary() != want {
		t.Errorf("CorrectionSummary = %q; want %q", s.CorrectionSummary(), want)
	}

	col, candidates := s.DateColumn()
	if col != "Audit Date" || candidates != nil {
		t.Errorf("DateColumn = %q, %v; want Audit Date, nil", col, candidates)
	}
	unique, err := s.SelectDateColumn(col)
	if err != nil {
		t.Fatalf("SelectDateColumn failed: %v", err)
	}
	wantDates := []civil.Date{
		{Year: 2025, Month: time.October, Day: 31},
		{Year: 2025, Month: time.November, Day: 5},
		reportDate,
	}
	if !reflect.DeepEqual(unique, wantDates) {
		t.Errorf("dates = %v; want %v", unique, wantDates)
	}
	if err := s.SelectDate(reportDate); err != nil {
		t.Fatal(err)
	}

	opt := s.OptionalColumns()
	if !opt[types.ColSegment] || opt[types.ColPersona] {
		t.Errorf("OptionalColumns = %v", opt)
	}

	set, summary, err := s.Generate(Options{Segments: true, Personas: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if set.Len() != 4 {
		t.Errorf("tables = %d; want 4 (no persona column)", set.Len())
	}

	combined, _ := set.Get(report.TitleCombined)
	if got, want := combined.Rows[1], []any{7, 4, 5, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("combined = %v; want %v", got, want)
	}

	agents, _ := set.Get(report.TitleAgents)
	wantAgents := [][]string{
		{"Agent Name", "Disqualified", "Qualified", "Grand Total", "Error%"},
		{"B", "1", "1", "2", "50%"},
		{"A", "1", "2", "3", "33%"},
		{"Grand Total", "2", "3", "5", "40%"},
	}
	if got := agents.Strings(); !reflect.DeepEqual(got, wantAgents) {
		t.Errorf("agents = %v; want %v", got, wantAgents)
	}

	reasons, _ := set.Get(report.TitleReasons)
	wantReasons := [][]string{
		{"DQ Reason", "Disqualified", "Error%"},
		{"Invalid Geo", "2", "40%"},
		{"Grand Total", "2", "40%"},
	}
	if got := reasons.Strings(); !reflect.DeepEqual(got, wantReasons) {
		t.Errorf("reasons = %v; want %v", got, wantReasons)
	}

	segments, _ := set.Get(report.TitleSegments)
	wantSegments := [][]string{
		{"Segment Wise", "Qualified Count"},
		{"SMB", "2"},
		{"ENT", "1"},
		{"(Blank)", "1"},
		{"Grand Total", "4"},
	}
	if got := segments.Strings(); !reflect.DeepEqual(got, wantSegments) {
		t.Errorf("segments = %v; want %v", got, wantSegments)
	}

	if summary.Daily.Total != 5 || summary.MTD.Qualified != 4 || summary.Daily.QualRate() != "60.0%" {
		t.Errorf("summary = %+v", summary)
	}

	name, data, err := s.Export("6399")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if name != "QA_Report_6399_06Nov25.xlsx" {
		t.Errorf("name = %q", name)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("QA_Report", "A3"); got != "PFB QA_Report_6399_06-Nov-25" {
		t.Errorf("title cell = %q", got)
	}

	var loadedEntry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "workbook loaded" {
			loadedEntry = e
		}
	}
	if loadedEntry == nil {
		t.Fatal("no workbook loaded log entry")
	}
	if loadedEntry.Data["records"] != 7 || loadedEntry.Data["file"] != "leads.xlsx" {
		t.Errorf("log fields = %v", loadedEntry.Data)
	}
}

func TestDeclineAllKeepsIssues(t *testing.T) {
	s, _ := newSession()
	data := leadWorkbook(t)

	first, err := s.Load("leads.xlsx", data)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Choose("Qual", "Qualified"); err != nil {
		t.Fatal(err)
	}
	if err := s.Decline("Qual"); err != nil {
		t.Fatal(err)
	}
	if len(s.Choices()) != 0 {
		t.Errorf("Choices = %v; want none", s.Choices())
	}

	err = s.SkipCorrections()
	if !errors.Is(err, types.ErrInvalidStatus) || !types.IsValidation(err) {
		t.Errorf("SkipCorrections err = %v; want invalid status", err)
	}

	second, err := s.Load("leads.xlsx", data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Issues, second.Issues) {
		t.Errorf("issues changed across runs: %v vs %v", first.Issues, second.Issues)
	}
}

func TestChoose(t *testing.T) {
	s, _ := newSession()
	if _, err := s.Load("leads.xlsx", leadWorkbook(t)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		original    string
		replacement string
		wantErr     bool
		wantChoice  bool
	}{
		{"Accepted value", "Qual", "Disqualified", false, true},
		{"Keep as is", "Qual", "Qual", false, false},
		{"Not allowed", "Qual", "Maybe", true, false},
		{"Unknown original", "Nope", "Qualified", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Decline(tt.original)
			err := s.Choose(tt.original, tt.replacement)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Choose(%q, %q) err = %v; wantErr %v", tt.original, tt.replacement, err, tt.wantErr)
			}
			_, ok := s.Choices()[tt.original]
			if ok != tt.wantChoice {
				t.Errorf("choice present = %v; want %v", ok, tt.wantChoice)
			}
		})
	}
}

func TestStepsOutOfOrder(t *testing.T) {
	s, _ := newSession()

	if _, err := s.ApplyCorrections(); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("ApplyCorrections err = %v", err)
	}
	if _, err := s.SelectDateColumn("Audit Date"); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("SelectDateColumn err = %v", err)
	}
	if err := s.SelectDate(reportDate); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("SelectDate err = %v", err)
	}
	if _, _, err := s.Generate(Options{}); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Generate err = %v", err)
	}
	if _, _, err := s.Export("6399"); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Export err = %v", err)
	}
}

func TestLoadRejectsUpload(t *testing.T) {
	s, _ := newSession()
	_, err := s.Load("leads.csv", []byte("a,b"))
	if !errors.Is(err, types.ErrUnsupportedFile) {
		t.Errorf("err = %v; want unsupported file", err)
	}

	_, err = s.Load("empty.xlsx", buildWorkbook(t, map[string][][]any{"Summary": {{"x"}}}))
	if !errors.Is(err, types.ErrNoSheets) {
		t.Errorf("err = %v; want no sheets", err)
	}
}

func TestCheckUpload(t *testing.T) {
	s, _ := newSession()
	if err := s.CheckUpload("big.xlsx", 51<<20); !errors.Is(err, types.ErrFileTooLarge) {
		t.Errorf("err = %v; want ErrFileTooLarge", err)
	}
	if err := s.CheckUpload("leads.csv", 10); !errors.Is(err, types.ErrUnsupportedFile) {
		t.Errorf("err = %v; want ErrUnsupportedFile", err)
	}
	if err := s.CheckUpload("leads.xlsm", 10); err != nil {
		t.Errorf("err = %v; want nil", err)
	}
}

func TestMissingRequiredColumn(t *testing.T) {
	s, _ := newSession()
	data := buildWorkbook(t, map[string][][]any{
		"Qualified": {{"Lead Status", "Agent Name"}, {"Qualified", "A"}},
	})
	if _, err := s.Load("leads.xlsx", data); err != nil {
		t.Fatal(err)
	}
	err := s.SkipCorrections()
	if !errors.Is(err, types.ErrMissingColumns) {
		t.Errorf("err = %v; want missing columns", err)
	}
}

func TestDateColumnFallback(t *testing.T) {
	s, hook := newSession()
	data := buildWorkbook(t, map[string][][]any{
		"Qualified": {
			{"Lead Status", "Agent Name", "DQ Reason", "Call Date"},
			{"Qualified", "A", nil, "2025-11-06"},
			{"Qualified", "A", nil, "not a date"},
		},
	})
	if _, err := s.Load("leads.xlsx", data); err != nil {
		t.Fatal(err)
	}
	if err := s.SkipCorrections(); err != nil {
		t.Fatal(err)
	}

	col, candidates := s.DateColumn()
	if col != "" || !reflect.DeepEqual(candidates, []string{"Call Date"}) {
		t.Errorf("DateColumn = %q, %v; want \"\", [Call Date]", col, candidates)
	}

	if _, err := s.SelectDateColumn("Agent Name"); !errors.Is(err, types.ErrNoDates) {
		t.Errorf("err = %v; want no dates", err)
	}

	hook.Reset()
	if _, err := s.SelectDateColumn("call date"); err != nil {
		t.Fatal(err)
	}
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["failures"] == 1 {
			warned = true
		}
	}
	if !warned {
		t.Error("parse failures were not logged")
	}
}

func TestDateBeforeWindowIsEmpty(t *testing.T) {
	s, _ := newSession()
	if _, err := s.Load("leads.xlsx", leadWorkbook(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.SkipCorrections(); err == nil {
		t.Fatal("expected invalid status error")
	}
	s.AcceptSuggestions()
	if _, err := s.ApplyCorrections(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectDateColumn("Audit Date"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectDate(civil.Date{Year: 2025, Month: time.September, Day: 1}); err != nil {
		t.Fatal(err)
	}
	set, summary, err := s.Generate(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Daily.Total != 0 || summary.MTD.Total != 0 {
		t.Errorf("summary = %+v; want empty windows", summary)
	}
	combined, _ := set.Get(report.TitleCombined)
	if got := combined.Rows[1]; !reflect.DeepEqual(got, []any{0, 0, 0, 0}) {
		t.Errorf("combined = %v", got)
	}
}

func TestReset(t *testing.T) {
	store := session.NewMemory()
	log, _ := logtest.NewNullLogger()
	s := New(store, nil, log)
	if _, err := s.Load("leads.xlsx", leadWorkbook(t)); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if store.Len() != 0 {
		t.Errorf("store holds %d keys after Reset", store.Len())
	}
	if s.FileName() != "" || s.Issues() != nil {
		t.Error("state survived Reset")
	}
}
