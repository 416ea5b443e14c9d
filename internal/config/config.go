package config

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no path is given.
const DefaultPath = "qareport.yaml"

// Config represents the structure of qareport.yaml.
type Config struct {
	// BaseDir holds Month/Campaign/workbook folders. Empty disables browsing.
	BaseDir   string `yaml:"base_dir"`
	OutputDir string `yaml:"output_dir"`

	MaxFileMB  int      `yaml:"max_file_mb"`
	Extensions []string `yaml:"extensions"`

	AcceptedStatuses []string `yaml:"accepted_statuses"`
	RequiredColumns  []string `yaml:"required_columns"`
	OptionalColumns  []string `yaml:"optional_columns"`

	FuzzyCutoff float64 `yaml:"fuzzy_cutoff"`
	FuzzyMax    int     `yaml:"fuzzy_max"`

	Log Log `yaml:"log"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxFileMB:        50,
		Extensions:       []string{".xlsx", ".xlsm"},
		AcceptedStatuses: []string{"Qualified", "Disqualified"},
		RequiredColumns:  []string{"Lead Status", "Agent Name", "DQ Reason"},
		OptionalColumns:  []string{"Segment Tagging", "JT Persona Tagging"},
		FuzzyCutoff:      0.6,
		FuzzyMax:         2,
		Log: Log{
			File:  "qareport.log",
			Level: "info",
		},
	}
}

// MaxFileBytes is the upload limit in bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) * 1024 * 1024
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables QAREPORT_BASE_DIR, QAREPORT_OUTPUT_DIR and
// QAREPORT_LOG_LEVEL override the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("QAREPORT_BASE_DIR"); v != "" {
		c.BaseDir = v
	}
	if v := os.Getenv("QAREPORT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("QAREPORT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	c.fill()
	return c, nil
}

// fill restores defaults for fields a partial file left zero.
func (c *Config) fill() {
	d := Default()
	if c.MaxFileMB <= 0 {
		c.MaxFileMB = d.MaxFileMB
	}
	if len(c.Extensions) == 0 {
		c.Extensions = d.Extensions
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	if len(c.AcceptedStatuses) == 0 {
		c.AcceptedStatuses = d.AcceptedStatuses
	}
	if len(c.RequiredColumns) == 0 {
		c.RequiredColumns = d.RequiredColumns
	}
	if c.OptionalColumns == nil {
		c.OptionalColumns = d.OptionalColumns
	}
	if c.FuzzyCutoff <= 0 || c.FuzzyCutoff > 1 {
		c.FuzzyCutoff = d.FuzzyCutoff
	}
	if c.FuzzyMax <= 0 {
		c.FuzzyMax = d.FuzzyMax
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
