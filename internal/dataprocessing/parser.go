package dataprocessing

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"strings"

	"github.com/xuri/excelize/v2"

	"evmap/internal/config"
	apperrors "evmap/internal/errors"
	"evmap/internal/infrastructure"
	"evmap/internal/validation"
	"evmap/pkg/contracts/domain"
)

// cancelCheckInterval is how many records ParseSource emits between context checks
const cancelCheckInterval = 1024

// ParseStats counts what the parser kept and dropped for one sheet
type ParseStats struct {
	Rows         int `json:"rows"`
	RowsSkipped  int `json:"rows_skipped"`
	CellsSkipped int `json:"cells_skipped"`
	Unresolved   int `json:"unresolved"`
	Records      int `json:"records"`
}

type yearColumn struct {
	index int
	key   string
	year  int
}

// Sheet streams normalized records out of one worksheet.
// Records can be iterated once; Err, Stats and Labels are final after iteration.
type Sheet struct {
	source   domain.Source
	cfg      config.SourceConfig
	resolver Resolver
	logger   *slog.Logger

	file      *excelize.File
	rows      *excelize.Rows
	regionCol int
	labelCol  int
	years     []yearColumn

	labels   map[string]string
	stats    ParseStats
	err      error
	consumed bool
}

// SheetOption configures OpenSheet
type SheetOption func(*Sheet)

// WithResolver sets the name resolver used when the region column holds names
func WithResolver(r Resolver) SheetOption {
	return func(s *Sheet) {
		s.resolver = r
	}
}

// WithLogger sets the logger for row-level diagnostics
func WithLogger(logger *slog.Logger) SheetOption {
	return func(s *Sheet) {
		s.logger = logger
	}
}

// OpenSheet opens the workbook, skips the descriptive rows and maps the header.
// Any failure to reach the header is SourceUnavailable.
func OpenSheet(source domain.Source, cfg config.SourceConfig, opts ...SheetOption) (*Sheet, error) {
	s := &Sheet{
		source:    source,
		cfg:       cfg,
		logger:    slog.Default(),
		regionCol: -1,
		labelCol:  -1,
		labels:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RegionIsName && s.resolver == nil {
		s.resolver = StaticNameIndex()
	}
	s.logger = infrastructure.WithSource(infrastructure.WithComponent(s.logger, "sheet_parser"), string(source))

	if err := validation.NewFileValidator(s.logger).ValidateWorkbook(cfg.Path); err != nil {
		return nil, s.unavailable(err)
	}

	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, s.unavailable(err)
	}
	s.file = f

	if idx, err := f.GetSheetIndex(cfg.SheetName); err != nil || idx < 0 {
		s.Close()
		return nil, s.unavailable(fmt.Errorf("sheet %q not found", cfg.SheetName))
	}

	rows, err := f.Rows(cfg.SheetName)
	if err != nil {
		s.Close()
		return nil, s.unavailable(err)
	}
	s.rows = rows

	if err := s.readHeader(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sheet) unavailable(cause error) error {
	return apperrors.NewSourceUnavailableError(string(s.source), s.cfg.Path, cause).
		WithContext("sheet", s.cfg.SheetName)
}

func (s *Sheet) readHeader() error {
	for i := 0; i < s.cfg.HeaderSkipRows; i++ {
		if !s.rows.Next() {
			return s.unavailable(fmt.Errorf("sheet ends after %d rows, before the header", i))
		}
	}
	if !s.rows.Next() {
		return s.unavailable(apperrors.NewParsingError(fmt.Sprintf("header row %d missing", s.cfg.HeaderSkipRows+1), nil))
	}

	header, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return s.unavailable(err)
	}

	keys := ColumnKeys(header)
	for i, key := range keys {
		switch key {
		case s.cfg.RegionColumn:
			s.regionCol = i
		case s.cfg.LabelColumn:
			if s.cfg.LabelColumn != "" {
				s.labelCol = i
			}
		}
		if year, ok := s.cfg.YearColumns[key]; ok {
			s.years = append(s.years, yearColumn{index: i, key: key, year: year})
		}
	}

	if s.regionCol < 0 {
		return s.unavailable(apperrors.NewParsingError(fmt.Sprintf("region column %q not in header %q", s.cfg.RegionColumn, keys), nil))
	}
	if len(s.years) < len(s.cfg.YearColumns) {
		s.logger.Debug("year columns missing from header",
			slog.Int("configured", len(s.cfg.YearColumns)),
			slog.Int("found", len(s.years)))
	}

	for i := 0; i < s.cfg.SubHeaderRows; i++ {
		if !s.rows.Next() {
			break
		}
	}
	return nil
}

// Records yields one record per numeric year cell of every accepted row, in
// row order and then header order. Rows with a short or unresolvable region
// and cells that are not numeric are dropped silently.
func (s *Sheet) Records() iter.Seq[domain.Record] {
	return func(yield func(domain.Record) bool) {
		if s.consumed || s.rows == nil {
			return
		}
		s.consumed = true
		defer s.closeRows()

		for s.rows.Next() {
			cells, err := s.rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				s.err = s.unavailable(err)
				return
			}
			s.stats.Rows++

			code, ok := s.regionCode(cells)
			if !ok {
				continue
			}

			for _, col := range s.years {
				v, ok := CoerceNumeric(cellAt(cells, col.index))
				if !ok {
					s.stats.CellsSkipped++
					continue
				}
				rec := domain.Record{Region: code, Year: col.year, Value: v}
				if !rec.Valid() {
					s.logger.Debug("record rejected", slog.String("region", code), slog.Int("year", col.year))
					s.stats.CellsSkipped++
					continue
				}
				s.stats.Records++
				if !yield(rec) {
					return
				}
			}
		}

		if err := s.rows.Error(); err != nil {
			s.err = s.unavailable(err)
		}
	}
}

// regionCode returns the normalized code of a data row, or false when the row is dropped
func (s *Sheet) regionCode(cells []string) (string, bool) {
	raw := strings.TrimSpace(cellAt(cells, s.regionCol))

	if s.cfg.RegionIsName && raw != "" {
		code, ok := s.resolver.Resolve(raw)
		if !ok {
			s.stats.Unresolved++
			s.logger.Debug("region name unresolved", slog.String("name", raw))
			return "", false
		}
		raw = code
	}

	code := domain.NormalizeRegionCode(raw)
	if code == "" || len(code) < s.cfg.MinCodeLength {
		s.stats.RowsSkipped++
		return "", false
	}

	if s.labelCol >= 0 && len(code) == CountryCodeLength {
		if label := strings.TrimSpace(cellAt(cells, s.labelCol)); label != "" {
			s.labels[label] = code
		}
	}
	return code, true
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// Err returns the read error that ended iteration early, if any
func (s *Sheet) Err() error {
	return s.err
}

// Stats returns the row and cell counters
func (s *Sheet) Stats() ParseStats {
	return s.stats
}

// Labels returns the label -> country code pairs seen in the label column
func (s *Sheet) Labels() map[string]string {
	return maps.Clone(s.labels)
}

func (s *Sheet) closeRows() {
	if s.rows != nil {
		_ = s.rows.Close()
	}
}

// Close releases the workbook
func (s *Sheet) Close() error {
	s.closeRows()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ParseResult is a fully drained sheet
type ParseResult struct {
	Source  domain.Source
	Records []domain.Record
	Labels  map[string]string
	Stats   ParseStats
}

// ParseSource opens a sheet and collects all of its records
func ParseSource(ctx context.Context, source domain.Source, cfg config.SourceConfig, opts ...SheetOption) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheet, err := OpenSheet(source, cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer sheet.Close()

	var records []domain.Record
	for rec := range sheet.Records() {
		records = append(records, rec)
		if len(records)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if err := sheet.Err(); err != nil {
		return nil, err
	}

	stats := sheet.Stats()
	sheet.logger.Debug("sheet parsed",
		slog.Int("rows", stats.Rows),
		slog.Int("records", stats.Records),
		slog.Int("rows_skipped", stats.RowsSkipped),
		slog.Int("cells_skipped", stats.CellsSkipped),
		slog.Int("unresolved", stats.Unresolved))

	return &ParseResult{
		Source:  source,
		Records: records,
		Labels:  sheet.Labels(),
		Stats:   stats,
	}, nil
}
