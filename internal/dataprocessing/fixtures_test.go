package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"evmap/internal/config"
)

// writeWorkbook saves rows to a single-sheet workbook and returns its path
func writeWorkbook(t *testing.T, dir, name, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// preamble returns n descriptive rows as the statistical exports print them
func preamble(n int) [][]interface{} {
	rows := make([][]interface{}, n)
	for i := range rows {
		rows[i] = []interface{}{"Dataset description line"}
	}
	return rows
}

func vehicleRows(skip int) [][]interface{} {
	rows := preamble(skip)
	return append(rows,
		[]interface{}{"TIME", "TIME", "2018", "", "2019", "", "2020", ""},
		[]interface{}{"GEO (Codes)", "GEO (Labels)", "", "", "", "", "", ""},
		[]interface{}{"EU27_2020", "European Union - 27 countries", 900, "", 950, "", 990, ""},
		[]interface{}{"PL", "Poland", 10, "", 20, "", 30, ""},
		[]interface{}{"PL1", "Makroregion centralny", 42, "", "", "", ":", ""},
		[]interface{}{"PL9", "Makroregion województwo mazowieckie", 5, "", 6, "", 7, ""},
		[]interface{}{"DE", "Germany (until 1990 former territory of the FRG)", 100, "", 110, "", 120, ""},
		[]interface{}{"DE1", "Baden-Württemberg", 50, "", 55, "", 60, ""},
		[]interface{}{"DE11", "Stuttgart", 7, "", "n/a", "", 9, "p"},
		[]interface{}{" fry ", "RUP FR", 3, "", 4, "", 5, ""},
		[]interface{}{"X", "footnote", 1, "", 1, "", 1, ""},
		[]interface{}{"", "Special value", "", "", "", "", "", ""},
		[]interface{}{"MT", "Malta", 1.5, "", "2.25", "", "  3 ", ""},
	)
}

func environmentRows(skip int) [][]interface{} {
	rows := preamble(skip)
	return append(rows,
		[]interface{}{"TIME", "2018", "", "2019", "", "2020", ""},
		[]interface{}{"GEO (Labels)", "", "", "", "", "", ""},
		[]interface{}{"European Union - 27 countries (from 2020)", 1, "", 2, "", 3, ""},
		[]interface{}{"Poland", 5, "", "abc", "", 7.5, ""},
		[]interface{}{"  Germany ", "6.5", "", 7, "", "", ""},
		[]interface{}{"Germany (until 1990 former territory of the FRG)", 11, "", 12, "", 13, ""},
		[]interface{}{"poland", 99, "", 99, "", 99, ""},
		[]interface{}{"Kosovo*", 1, "", 1, "", 1, ""},
	)
}

const referenceGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NUTS_ID": "PL", "LEVL_CODE": 0}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "PL1", "LEVL_CODE": 1}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "PL12", "LEVL_CODE": 2, "NAME_LATN": "Mazowiecki"}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "PL11", "LEVL_CODE": 2, "NAME_LATN": "Łódzkie"}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "DE11", "LEVL_CODE": 2}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "DE12", "LEVL_CODE": 2}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "FRY1", "LEVL_CODE": 2}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "FRY2", "LEVL_CODE": 2}, "geometry": null}
  ]
}`

// testConfig writes both workbooks and the reference into a temp data dir
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Sources.Vehicles.Path = filepath.Base(writeWorkbook(t, dir, "ev.xlsx", "Sheet 3", vehicleRows(8)))
	cfg.Sources.Vehicles.YearColumns = config.YearRange(2018, 2020)
	cfg.Sources.Environment.Path = filepath.Base(writeWorkbook(t, dir, "env.xlsx", "Sheet 1", environmentRows(8)))
	cfg.Sources.Environment.YearColumns = config.YearRange(2018, 2020)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nuts.geojson"), []byte(referenceGeoJSON), 0644))
	cfg.Reference.GeoJSONPath = "nuts.geojson"

	require.NoError(t, cfg.Validate())
	return cfg
}
