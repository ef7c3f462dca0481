package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
	return path
}

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "xlsx workbook",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "vehicles.xlsx")
			},
		},
		{
			name: "macro enabled workbook",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "Vehicles.XLSM")
			},
		},
		{
			name: "legacy xls",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "vehicles.xls")
			},
			wantErr:       true,
			errorContains: "not a supported workbook",
		},
		{
			name: "lock file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "~$vehicles.xlsx")
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.xlsx")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "book.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)
			err := v.ValidateWorkbook(tt.setupFunc(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateReference(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateReference(writeFile(t, dir, "nuts.geojson")))
	assert.NoError(t, v.ValidateReference(writeFile(t, dir, "nuts.json")))

	err := v.ValidateReference(writeFile(t, dir, "nuts.shp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a GeoJSON document")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "exports", "2024")
		require.NoError(t, v.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err), "probe file must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := writeFile(t, t.TempDir(), "taken")
		err := v.ValidateOutputDirectory(file)
		assert.Error(t, err)
	})
}
