package workbook

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nconklindev/qareport/internal/types"

	"github.com/xuri/excelize/v2"
)

// Sheets holds the raw rows of the sheets that were found. The first row of
// each is normally the header row.
type Sheets map[types.Sheet][][]string

// CheckUpload rejects files by extension and size before anything is parsed.
func CheckUpload(name string, size, limit int64, extensions []string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(extensions, ext) {
		return types.Invalid(types.ErrUnsupportedFile, "unsupported file type %q: expected one of %s", ext, strings.Join(extensions, ", "))
	}
	if limit > 0 && size > limit {
		return types.Invalid(types.ErrFileTooLarge, "File size exceeds %d MB limit", limit/(1024*1024))
	}
	return nil
}

// ReadSheets opens a workbook and returns the rows of its "Qualified" and
// "Disqualified" sheets, matched case-insensitively. Cell values are raw, so
// date cells come back as serial numbers.
func ReadSheets(r io.Reader) (Sheets, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(Sheets)
	for _, name := range f.GetSheetList() {
		kind, ok := sheetKind(name)
		if !ok {
			continue
		}
		if _, dup := sheets[kind]; dup {
			continue
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets[kind] = rows
	}
	return sheets, nil
}

func sheetKind(name string) (types.Sheet, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "qualified":
		return types.SheetQualified, true
	case "disqualified":
		return types.SheetDisqualified, true
	}
	return "", false
}
