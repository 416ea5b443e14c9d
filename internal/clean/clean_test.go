package clean

import (
	"testing"

	"github.com/nconklindev/qareport/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"Nil", nil, ""},
		{"Trim and lower", "  QuaLified ", "qualified"},
		{"Number", 12.0, "12"},
		{"Empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%v) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"email bounce back":    "Email Bounce Back",
		"INVALID PHONE NUMBER": "Invalid Phone Number",
		"not in TAL":           "Not In Tal",
		"Dead Contact":         "Dead Contact",
	}
	for in, want := range tests {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name  string
		cells map[string]any
		want  map[string]string
	}{
		{
			name: "All blank",
			cells: map[string]any{
				"Lead Status": nil,
				"Agent Name":  "  ",
				"DQ Reason":   "-",
			},
			want: map[string]string{"Lead Status": "", "Agent Name": "(Blank)", "DQ Reason": "(Blank)"},
		},
		{
			name:  "Missing columns",
			cells: map[string]any{"Audit Date": "2025-11-06"},
			want:  map[string]string{"Lead Status": "", "Agent Name": "(Blank)", "DQ Reason": "(Blank)"},
		},
		{
			name: "Trim and title-case reason",
			cells: map[string]any{
				"Lead Status": " Disqualified ",
				"Agent Name":  " Priya ",
				"DQ Reason":   "  email bounce back ",
			},
			want: map[string]string{"Lead Status": "Disqualified", "Agent Name": "Priya", "DQ Reason": "Email Bounce Back"},
		},
		{
			name: "Unknown reason still title-cased",
			cells: map[string]any{
				"Lead Status": "Disqualified",
				"Agent Name":  "Sam",
				"DQ Reason":   "wrong department",
			},
			want: map[string]string{"Lead Status": "Disqualified", "Agent Name": "Sam", "DQ Reason": "Wrong Department"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Record(types.NewRecord(types.SheetQualified, 2, tt.cells))
			for col, want := range tt.want {
				v, ok := got.Get(col)
				if !ok {
					t.Fatalf("%s missing after clean", col)
				}
				if v != want {
					t.Errorf("%s = %q; want %q", col, v, want)
				}
			}
		})
	}
}

func TestRecordDoesNotShareState(t *testing.T) {
	orig := types.NewRecord(types.SheetDisqualified, 5, map[string]any{
		"Lead Status": " disqualified",
		"DQ Reason":   "invalid geo",
	})
	cleaned := Records([]types.Record{orig})

	if v, _ := orig.Get("DQ Reason"); v != "invalid geo" {
		t.Errorf("original mutated: DQ Reason = %v", v)
	}
	if v, _ := cleaned[0].Get("DQ Reason"); v != "Invalid Geo" {
		t.Errorf("cleaned DQ Reason = %v", v)
	}
	if cleaned[0].Sheet != types.SheetDisqualified || cleaned[0].Row != 5 {
		t.Errorf("provenance lost: %+v", cleaned[0])
	}
}

func TestRecordKeepsTypedHeaderCase(t *testing.T) {
	r := Record(types.NewRecord(types.SheetQualified, 2, map[string]any{"lead status": " Qualified"}))
	if v, ok := r.Get("lead status"); !ok || v != "Qualified" {
		t.Errorf("lead status = %v, %v", v, ok)
	}
	if _, ok := r.Get("Lead Status"); ok {
		t.Error("cleaning added a second status column")
	}
}

func TestTag(t *testing.T) {
	r := types.NewRecord(types.SheetQualified, 2, map[string]any{"Segment Tagging": " Enterprise ", "JT Persona Tagging": ""})
	if got := Tag(r, "Segment Tagging"); got != "Enterprise" {
		t.Errorf("Tag = %q", got)
	}
	if got := Tag(r, "JT Persona Tagging"); got != "(Blank)" {
		t.Errorf("Tag blank = %q", got)
	}
	if got := Tag(r, "Missing"); got != "(Blank)" {
		t.Errorf("Tag missing = %q", got)
	}
}

func TestOptionalColumns(t *testing.T) {
	got := OptionalColumns(types.Headers{"Lead Status", "segment tagging"}, []string{"Segment Tagging", "JT Persona Tagging"})
	if !got["Segment Tagging"] || got["JT Persona Tagging"] {
		t.Errorf("OptionalColumns = %v", got)
	}
}
