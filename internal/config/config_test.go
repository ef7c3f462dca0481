package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "evmap/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())

	ev := cfg.Sources.Vehicles
	assert.Equal(t, "Sheet 3", ev.SheetName)
	assert.Equal(t, 8, ev.HeaderSkipRows)
	assert.Equal(t, 1, ev.SubHeaderRows)
	assert.Equal(t, "TIME", ev.RegionColumn)
	assert.Equal(t, "TIME.1", ev.LabelColumn)
	assert.False(t, ev.RegionIsName)
	assert.Len(t, ev.YearColumns, 5)
	assert.Equal(t, 2018, ev.YearColumns["2018"])

	env := cfg.Sources.Environment
	assert.Equal(t, "Sheet 1", env.SheetName)
	assert.True(t, env.RegionIsName)
	assert.Len(t, env.YearColumns, 10)
	assert.Equal(t, 2013, env.YearColumns["2013"])

	assert.Equal(t, 3, cfg.Hierarchy.CoarseLength)
	assert.Equal(t, 4, cfg.Hierarchy.FineLength)
	assert.Equal(t, []string{"FRY"}, cfg.Hierarchy.GroupingOverrides)
	assert.Equal(t, 2, cfg.Reference.FineLevel)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 8, cfg.Sources.Vehicles.HeaderSkipRows)
			},
		},
		{
			name: "file overrides skip rows and year map for a newer export",
			file: `
sources:
  vehicles:
    path: ev_2024.xlsx
    sheet_name: "Sheet 4"
    header_skip_rows: 9
    sub_header_rows: 1
    region_column: TIME
    label_column: TIME.1
    min_code_length: 2
    year_columns:
      "2019": 2019
      "Unnamed: 4": 2020
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				ev := cfg.Sources.Vehicles
				assert.Equal(t, "ev_2024.xlsx", ev.Path)
				assert.Equal(t, "Sheet 4", ev.SheetName)
				assert.Equal(t, 9, ev.HeaderSkipRows)
				assert.Equal(t, map[string]int{"2019": 2019, "Unnamed: 4": 2020}, ev.YearColumns)
				assert.Equal(t, "Sheet 1", cfg.Sources.Environment.SheetName)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9000\n",
			env: map[string]string{
				"EVMAP_SERVER_PORT":                       "9100",
				"EVMAP_SOURCES_ENVIRONMENT_SHEET_NAME":    "Sheet 2",
				"EVMAP_HIERARCHY_GROUPING_OVERRIDES":      "FRY,ES7",
				"EVMAP_SOURCES_VEHICLES_YEAR_COLUMNS":     "2020:2020,2021:2021",
				"EVMAP_SOURCES_VEHICLES_HEADER_SKIP_ROWS": "9",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, "Sheet 2", cfg.Sources.Environment.SheetName)
				assert.Equal(t, []string{"FRY", "ES7"}, cfg.Hierarchy.GroupingOverrides)
				assert.Equal(t, map[string]int{"2020": 2020, "2021": 2021}, cfg.Sources.Vehicles.YearColumns)
				assert.Equal(t, 9, cfg.Sources.Vehicles.HeaderSkipRows)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"EVMAP_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "negative skip rows",
			file:    "sources:\n  environment:\n    header_skip_rows: -1\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "sources: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestValidate_CrossField(t *testing.T) {
	t.Run("label equals region column", func(t *testing.T) {
		cfg := Default()
		cfg.Sources.Vehicles.LabelColumn = "TIME"
		assert.Error(t, cfg.Validate())
	})

	t.Run("region column mapped to a year", func(t *testing.T) {
		cfg := Default()
		cfg.Sources.Environment.YearColumns["TIME"] = 2013
		assert.Error(t, cfg.Validate())
	})

	t.Run("fine length not above coarse", func(t *testing.T) {
		cfg := Default()
		cfg.Hierarchy.FineLength = 3
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty year map", func(t *testing.T) {
		cfg := Default()
		cfg.Sources.Vehicles.YearColumns = map[string]int{}
		assert.Error(t, cfg.Validate())
	})
}

func TestYearRange(t *testing.T) {
	years := YearRange(2019, 2021)
	assert.Equal(t, map[string]int{"2019": 2019, "2020": 2020, "2021": 2021}, years)
}
