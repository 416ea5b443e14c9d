// Package browse lists lead workbooks stored as Month/Campaign/file under a
// base directory.
package browse

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// File is one workbook found in a campaign folder.
type File struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// SizeMB is the size in mebibytes.
func (f File) SizeMB() float64 {
	return float64(f.Size) / (1024 * 1024)
}

// DisplayName is "name (1.2 MB, 06-Nov-2025 03:04 PM)".
func (f File) DisplayName() string {
	return fmt.Sprintf("%s (%.1f MB, %s)", f.Name, f.SizeMB(), f.ModTime.Format("02-Jan-2006 03:04 PM"))
}

// Browser walks a folder tree of workbooks.
type Browser interface {
	// ListSubfolders returns the folder names directly under path, sorted.
	ListSubfolders(path ...string) ([]string, error)
	// ListWorkbooks returns the workbooks under path, newest first.
	ListWorkbooks(path ...string) ([]File, error)
	ReadBytes(path string) ([]byte, error)
	Join(parts ...string) string
}

var _ Browser = (*Local)(nil)

// Local browses the local (or mounted network) file system.
type Local struct {
	Base       string
	Extensions []string
	Log        logrus.FieldLogger
}

func NewLocal(base string, extensions []string, log logrus.FieldLogger) *Local {
	return &Local{Base: base, Extensions: extensions, Log: log}
}

// Available reports whether the base directory exists.
func (l *Local) Available() bool {
	info, err := os.Stat(l.Base)
	return err == nil && info.IsDir()
}

func (l *Local) Join(parts ...string) string {
	return filepath.Join(append([]string{l.Base}, parts...)...)
}

func (l *Local) ListSubfolders(path ...string) ([]string, error) {
	dir := l.Join(path...)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	folders := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})
	slices.Sort(folders)
	l.Log.WithFields(logrus.Fields{"dir": dir, "folders": len(folders)}).Debug("listed folders")
	return folders, nil
}

func (l *Local) ListWorkbooks(path ...string) ([]File, error) {
	dir := l.Join(path...)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if !slices.Contains(l.Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			l.Log.WithError(err).WithField("file", e.Name()).Warn("skipping unreadable file")
			continue
		}
		files = append(files, File{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortStableFunc(files, func(a, b File) int {
		return b.ModTime.Compare(a.ModTime)
	})
	l.Log.WithFields(logrus.Fields{"dir": dir, "files": len(files)}).Debug("listed workbooks")
	return files, nil
}

func (l *Local) ReadBytes(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

// CampaignID guesses the campaign id from a folder such as "6326_Apr'25".
func CampaignID(folder string) string {
	id, _, _ := strings.Cut(strings.TrimSpace(folder), "_")
	return id
}
