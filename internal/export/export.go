// Package export writes CSV snapshots of the attendance log: one row per
// guest with derived check-in/out flags and the most recent timestamps.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/doorlist/doorlist/internal/clock"
	"github.com/doorlist/doorlist/internal/store"
)

var header = []string{
	"Member Name",
	"Guest Name",
	"Check In Y/N",
	"Check In Time",
	"Check Out Y/N",
	"Check Out Time",
}

// Exporter produces snapshot files from the store.
type Exporter struct {
	store *store.Store
	clock clock.Clock
}

// New creates an exporter. The clock supplies the filename timestamp.
func New(st *store.Store, clk clock.Clock) *Exporter {
	return &Exporter{store: st, clock: clk}
}

// Snapshot writes the current attendance snapshot to a timestamped CSV file
// under outDir (created if needed) and returns the file's path. An empty
// outDir means the user's desktop directory.
func (e *Exporter) Snapshot(ctx context.Context, outDir string) (string, error) {
	rows, err := e.store.ExportRows(ctx)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	if outDir == "" {
		outDir, err = desktopDir()
		if err != nil {
			return "", fmt.Errorf("export: %w", err)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("export: create output dir: %w", err)
	}

	path := filepath.Join(outDir, e.filename())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create file: %w", err)
	}

	if err := write(f, rows); err != nil {
		f.Close()
		return "", fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close file: %w", err)
	}

	return path, nil
}

func (e *Exporter) filename() string {
	return "sign-in-" + clock.FileStamp(e.clock.Now()) + ".csv"
}

// write renders the snapshot rows as CSV.
func write(w io.Writer, rows []store.ExportRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			deref(r.MemberHost),
			r.GuestName,
			yn(r.IsIn || r.LastIn != nil),
			deref(r.LastIn),
			yn(r.LastOut != nil && *r.LastOut != ""),
			deref(r.LastOut),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row for %s: %w", r.GuestName, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func yn(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func desktopDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("desktop directory unavailable: %w", err)
	}
	return filepath.Join(home, "Desktop"), nil
}
