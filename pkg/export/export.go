// Package export writes the stored samples to a CSV file.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ericogr/accel-logger/pkg/store"
	"github.com/pkg/errors"
)

const FileName = "database_export.csv"

var Header = []string{"ID", "X", "Y", "Z", "Timestamp"}

type Source interface {
	AllData(ctx context.Context) ([]store.AccelerometerData, error)
}

// WriteCSV writes the header and one row per record, in the given order.
func WriteCSV(w io.Writer, rows []store.AccelerometerData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush")
}

func record(r store.AccelerometerData) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		formatFloat(r.X),
		formatFloat(r.Y),
		formatFloat(r.Z),
		strconv.FormatInt(r.Timestamp, 10),
	}
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// Export reads every record and writes dir/database_export.csv.
// It returns the file path and the number of data rows.
func Export(ctx context.Context, src Source, dir string) (string, int, error) {
	rows, err := src.AllData(ctx)
	if err != nil {
		return "", 0, errors.Wrap(err, "read all data")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, errors.Wrap(err, "create export dir")
	}
	// write next to the target and rename, so readers and concurrent exports
	// only ever see a complete file
	tmp, err := os.CreateTemp(dir, ".database_export-*.csv")
	if err != nil {
		return "", 0, errors.Wrap(err, "create export file")
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return "", 0, errors.Wrap(err, "chmod export file")
	}

	if err := WriteCSV(tmp, rows); err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, errors.Wrap(err, "close export file")
	}
	path := filepath.Join(dir, FileName)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, errors.Wrap(err, "rename export file")
	}
	return path, len(rows), nil
}

type Notifier interface {
	Notify(text string)
}

type Logger interface {
	Printf(format string, v ...any)
}

// Exporter runs exports in the background and reports the result through a Notifier.
type Exporter struct {
	mu       sync.Mutex // one export at a time
	src      Source
	dir      string
	notifier Notifier
	logger   Logger
}

func NewExporter(src Source, dir string, n Notifier, l Logger) *Exporter {
	return &Exporter{src: src, dir: dir, notifier: n, logger: l}
}

// Start returns immediately; done is closed when the export has finished.
func (e *Exporter) Start(ctx context.Context) (done <-chan struct{}) {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		e.run(ctx)
	}()
	return ch
}

func (e *Exporter) run(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path, n, err := Export(ctx, e.src, e.dir)
	if err != nil {
		e.logger.Printf("export failed: %v", err)
		e.notifier.Notify(fmt.Sprintf("Export failed: %v", err))
		return
	}
	e.logger.Printf("Database exported to %s (%d rows)", path, n)
	e.notifier.Notify(fmt.Sprintf("Database exported to %s", path))
}
