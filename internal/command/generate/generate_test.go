package generate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/types"
)

func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Lead Status", "Agent Name", "Audit Date", "DQ Reason"},
		{"Qualified", "A", "2025-11-05", nil},
		{"Qualify", "A", "2025-11-06", nil},
		{"Disqualified", "B", "2025-11-06", "wrong title"},
	}
	if err := f.SetSheetName("Sheet1", "Qualified"); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Qualified", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "leads.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	log, _ := logtest.NewNullLogger()

	o := options{
		file:        writeWorkbook(t, dir),
		campaign:    "6399",
		autoCorrect: true,
		out:         out,
	}
	var stdout bytes.Buffer
	if err := run(o, config.Default(), log, &stdout); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, want := range []string{
		"'Qualify' → 'Qualified'",
		"Date 06-Nov-2025: 2 leads, 1 qualified, 1 disqualified (50.0%)",
		"MTD: 3 leads, 2 qualified, 1 disqualified (66.7%)",
	} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("output missing %q:\n%s", want, stdout.String())
		}
	}
	if _, err := os.Stat(filepath.Join(out, "QA_Report_6399_06Nov25.xlsx")); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestRunWithoutAutoCorrect(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	o := options{file: writeWorkbook(t, t.TempDir()), campaign: "6399", out: t.TempDir()}

	var stdout bytes.Buffer
	err := run(o, config.Default(), log, &stdout)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("err = %v; want ErrUnresolved", err)
	}
	if !strings.Contains(stdout.String(), `"Qualify" (1 rows), suggested: Qualified`) {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestRunInvalidCampaign(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	o := options{file: writeWorkbook(t, t.TempDir()), campaign: "63/99", autoCorrect: true, out: t.TempDir()}

	err := run(o, config.Default(), log, &bytes.Buffer{})
	if !errors.Is(err, types.ErrInvalidCampaign) {
		t.Errorf("err = %v; want invalid campaign", err)
	}
}

func TestRunRejectsOversizedFileBeforeReading(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	path := filepath.Join(t.TempDir(), "huge.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	// Sparse file: its size is 2 MB but it holds no workbook.
	if err := os.Truncate(path, 2<<20); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.MaxFileMB = 1

	err = run(options{file: path, campaign: "6399", out: t.TempDir()}, cfg, log, &bytes.Buffer{})
	if !errors.Is(err, types.ErrFileTooLarge) {
		t.Errorf("err = %v; want ErrFileTooLarge", err)
	}
}

func TestRunRequiresFlags(t *testing.T) {
	if err := Run([]string{"-file", "leads.xlsx"}); err == nil {
		t.Error("expected an error without -campaign")
	}
}

func TestParseDate(t *testing.T) {
	want := civil.Date{Year: 2025, Month: time.November, Day: 6}
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2025-11-06", false},
		{"06-Nov-2025", false},
		{" 2025-11-06 ", false},
		{"11/06/2025", true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDate(%q) err = %v; wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != want {
			t.Errorf("parseDate(%q) = %v; want %v", tt.in, got, want)
		}
	}
}

func TestSuggestion(t *testing.T) {
	tests := []struct {
		auto  string
		fuzzy []string
		want  string
	}{
		{"Qualified", []string{"Qualified"}, "Qualified"},
		{"", []string{"Disqualified", "Qualified"}, "Disqualified or Qualified"},
		{"", nil, "none"},
	}
	for _, tt := range tests {
		if got := suggestion(tt.auto, tt.fuzzy); got != tt.want {
			t.Errorf("suggestion(%q, %v) = %q; want %q", tt.auto, tt.fuzzy, got, tt.want)
		}
	}
}
