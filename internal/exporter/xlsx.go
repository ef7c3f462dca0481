package exporter

import (
	"fmt"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet that receives exported rows
const DefaultSheetName = "Data"

// WriteXLSX writes the header and rows to a single-sheet workbook.
// Numeric cells keep their type so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, sheet string, headers []string, rows iter.Seq[[]interface{}]) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	row := 1
	if len(headers) > 0 {
		cells := make([]interface{}, len(headers))
		for i, h := range headers {
			cells[i] = h
		}
		if err := setRow(sw, row, cells); err != nil {
			return err
		}
		row++
	}

	for cells := range rows {
		if err := setRow(sw, row, cells); err != nil {
			return err
		}
		row++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(sw *excelize.StreamWriter, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
