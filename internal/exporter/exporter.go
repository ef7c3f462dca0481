package exporter

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"evmap/internal/config"
	"evmap/internal/store"
	"evmap/internal/validation"
	"evmap/pkg/contracts/domain"
)

var (
	tableHeaders     = []string{"region", "year", "value"}
	aggregateHeaders = []string{"region", "label", "value"}
)

// Exporter writes tables and aggregates in any supported format
type Exporter struct {
	paths  *config.Paths
	bom    bool
	logger *slog.Logger
}

// Option configures an Exporter
type Option func(*Exporter)

// WithBOM prefixes CSV output with a UTF-8 byte order mark
func WithBOM(bom bool) Option {
	return func(e *Exporter) {
		e.bom = bom
	}
}

// WithLogger sets the exporter logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// NewExporter creates an exporter that saves files under paths.ExportsDir
func NewExporter(paths *config.Paths, opts ...Option) *Exporter {
	e := &Exporter{paths: paths, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteTable dumps every record of t as region,year,value
func (e *Exporter) WriteTable(w io.Writer, format Format, t *store.Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, WriteOptions{Headers: tableHeaders, BOMPrefix: e.bom}, func(yield func([]string) bool) {
			for rec := range t.All() {
				if !yield([]string{rec.Region, formatInt(rec.Year), formatFloat(rec.Value)}) {
					return
				}
			}
		})
	case FormatXLSX:
		return WriteXLSX(w, string(t.Source()), tableHeaders, func(yield func([]interface{}) bool) {
			for rec := range t.All() {
				if !yield([]interface{}{rec.Region, rec.Year, rec.Value}) {
					return
				}
			}
		})
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteAggregate writes rows as region,label,value in the given order
func (e *Exporter) WriteAggregate(w io.Writer, format Format, rows []domain.RegionValue) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, WriteOptions{Headers: aggregateHeaders, BOMPrefix: e.bom}, mapRows(rows, func(r domain.RegionValue) []string {
			return []string{r.Region, r.Label, formatFloat(r.Value)}
		}))
	case FormatXLSX:
		return WriteXLSX(w, DefaultSheetName, aggregateHeaders, mapRows(rows, func(r domain.RegionValue) []interface{} {
			return []interface{}{r.Region, r.Label, r.Value}
		}))
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// SaveTable writes a table dump to name under the exports directory and returns the full path
func (e *Exporter) SaveTable(name string, format Format, t *store.Table) (string, error) {
	return e.save(name, format, func(w io.Writer) error {
		return e.WriteTable(w, format, t)
	})
}

// SaveAggregate writes aggregate rows to name under the exports directory and returns the full path
func (e *Exporter) SaveAggregate(name string, format Format, rows []domain.RegionValue) (string, error) {
	return e.save(name, format, func(w io.Writer) error {
		return e.WriteAggregate(w, format, rows)
	})
}

func (e *Exporter) save(name string, format Format, write func(io.Writer) error) (string, error) {
	if filepath.Ext(name) == "" {
		name += format.Extension()
	}
	fullPath := e.paths.GetExportPath(name)

	e.logger.Info("Writing export file",
		slog.String("file_path", name),
		slog.String("full_path", fullPath),
		slog.String("format", string(format)))

	if err := validation.NewFileValidator(e.logger).ValidateOutputDirectory(filepath.Dir(fullPath)); err != nil {
		return "", err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

func mapRows[T, R any](rows []T, fn func(T) R) iter.Seq[R] {
	return func(yield func(R) bool) {
		for _, r := range rows {
			if !yield(fn(r)) {
				return
			}
		}
	}
}
