// Package generate is the headless "report" subcommand: one workbook in, one
// report workbook out.
package generate

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/dates"
	"github.com/nconklindev/qareport/internal/logging"
	"github.com/nconklindev/qareport/internal/pipeline"
	"github.com/nconklindev/qareport/internal/session"
)

// ErrUnresolved is returned when invalid Lead Status values remain and
// -auto-correct was not given.
var ErrUnresolved = errors.New("invalid Lead Status values need correcting")

type options struct {
	file        string
	date        string
	campaign    string
	column      string
	autoCorrect bool
	segment     bool
	persona     bool
	out         string
	config      string
}

// Run executes the report subcommand with flag arguments like -file, -campaign, -date.
func Run(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var o options
	fs.StringVar(&o.file, "file", "", "Lead workbook (.xlsx or .xlsm) with Qualified/Disqualified sheets (required)")
	fs.StringVar(&o.campaign, "campaign", "", "Campaign ID used in the report name (required)")
	fs.StringVar(&o.date, "date", "", "Report date as YYYY-MM-DD or DD-Mon-YYYY (default: latest date in the file)")
	fs.StringVar(&o.column, "column", "", "Date column (default: Audit Date)")
	fs.BoolVar(&o.autoCorrect, "auto-correct", false, "Apply suggested Lead Status corrections")
	fs.BoolVar(&o.segment, "segment", true, "Include the Segment report when the column exists")
	fs.BoolVar(&o.persona, "persona", true, "Include the JT Persona report when the column exists")
	fs.StringVar(&o.out, "out", "", "Output directory (default: output_dir from config, else current directory)")
	fs.StringVar(&o.config, "config", "", "Config file (default: "+config.DefaultPath+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if o.file == "" || o.campaign == "" {
		fs.Usage()
		return fmt.Errorf("report: -file and -campaign are required")
	}

	cfg, err := config.Load(o.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(os.Stderr, cfg.Log.Level)
	return run(o, cfg, log, os.Stdout)
}

func run(o options, cfg *config.Config, log logrus.FieldLogger, stdout io.Writer) error {
	s := pipeline.New(session.NewMemory(), cfg, log)
	info, err := os.Stat(o.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.file, err)
	}
	if err := s.CheckUpload(filepath.Base(o.file), info.Size()); err != nil {
		return err
	}
	data, err := os.ReadFile(o.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.file, err)
	}

	loaded, err := s.Load(filepath.Base(o.file), data)
	if err != nil {
		return err
	}

	if len(loaded.Issues) > 0 {
		if !o.autoCorrect {
			for _, issue := range loaded.Issues {
				fmt.Fprintf(stdout, "invalid Lead Status %q (%d rows), suggested: %s\n",
					issue.Original, issue.Count, suggestion(issue.AutoSuggestion, issue.FuzzyMatches))
			}
			return ErrUnresolved
		}
		if _, err := s.AcceptSuggestions(); err != nil {
			return err
		}
	}
	if _, err := s.ApplyCorrections(); err != nil {
		return err
	}
	fmt.Fprint(stdout, s.CorrectionSummary())
	fmt.Fprintln(stdout)

	col := o.column
	if col == "" {
		detected, candidates := s.DateColumn()
		if detected == "" {
			return fmt.Errorf("no Audit Date column found, pass -column (one of: %s)", strings.Join(candidates, ", "))
		}
		col = detected
	}
	found, err := s.SelectDateColumn(col)
	if err != nil {
		return err
	}

	d := found[len(found)-1]
	if o.date != "" {
		if d, err = parseDate(o.date); err != nil {
			return err
		}
	}
	if err := s.SelectDate(d); err != nil {
		return err
	}

	set, summary, err := s.Generate(pipeline.Options{Segments: o.segment, Personas: o.persona})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Date %s: %d leads, %d qualified, %d disqualified (%s)\n",
		dates.Display(d), summary.Daily.Total, summary.Daily.Qualified, summary.Daily.Disqualified, summary.Daily.QualRate())
	fmt.Fprintf(stdout, "MTD: %d leads, %d qualified, %d disqualified (%s)\n",
		summary.MTD.Total, summary.MTD.Qualified, summary.MTD.Disqualified, summary.MTD.QualRate())

	name, out, err := s.Export(o.campaign)
	if err != nil {
		return err
	}
	dir := o.out
	if dir == "" {
		dir = cfg.OutputDir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d tables)\n", path, set.Len())
	return nil
}

func suggestion(auto string, fuzzy []string) string {
	if auto != "" {
		return auto
	}
	if len(fuzzy) > 0 {
		return strings.Join(fuzzy, " or ")
	}
	return "none"
}

// parseDate accepts ISO dates and the display form.
func parseDate(s string) (civil.Date, error) {
	if d, err := civil.ParseDate(strings.TrimSpace(s)); err == nil {
		return d, nil
	}
	d, err := dates.ParseDisplay(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid -date %q: use YYYY-MM-DD or DD-Mon-YYYY", s)
	}
	return d, nil
}
