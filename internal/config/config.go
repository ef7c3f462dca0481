package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "evmap/internal/errors"
)

// Config represents the complete application configuration.
// It is built once by Load and treated as read-only afterwards.
// Leaf fields use split_words so EVMAP_SERVER_PORT never falls back to a bare PORT variable.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	Reference ReferenceConfig `yaml:"reference" envconfig:"REFERENCE"`
	Hierarchy HierarchyConfig `yaml:"hierarchy" envconfig:"HIERARCHY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SourcesConfig holds the per-source parser parameters for both workbooks
type SourcesConfig struct {
	Vehicles    SourceConfig `yaml:"vehicles" envconfig:"VEHICLES"`
	Environment SourceConfig `yaml:"environment" envconfig:"ENVIRONMENT"`
	// DeriveNames augments the static name index with label/code pairs from the vehicle sheet
	DeriveNames bool `yaml:"derive_names" split_words:"true"`
}

// SourceConfig parameterizes the sheet parser for one workbook.
// Column identifiers use the header text, "Unnamed: <i>" for empty header cells
// and "<label>.<n>" for repeated labels.
type SourceConfig struct {
	Path           string         `yaml:"path" split_words:"true" validate:"required"`
	SheetName      string         `yaml:"sheet_name" split_words:"true" validate:"required"`
	HeaderSkipRows int            `yaml:"header_skip_rows" split_words:"true" validate:"gte=0"`
	SubHeaderRows  int            `yaml:"sub_header_rows" split_words:"true" validate:"gte=0"`
	RegionColumn   string         `yaml:"region_column" split_words:"true" validate:"required"`
	LabelColumn    string         `yaml:"label_column" split_words:"true"`
	RegionIsName   bool           `yaml:"region_is_name" split_words:"true"`
	MinCodeLength  int            `yaml:"min_code_length" split_words:"true" validate:"gte=1"`
	YearColumns    map[string]int `yaml:"year_columns" split_words:"true" validate:"required,min=1,dive,gte=1000,lte=9999"`
}

// ReferenceConfig locates the geographic reference dataset
type ReferenceConfig struct {
	GeoJSONPath   string `yaml:"geojson_path" split_words:"true" validate:"required"`
	CodeProperty  string `yaml:"code_property" split_words:"true" validate:"required"`
	LevelProperty string `yaml:"level_property" split_words:"true" validate:"required"`
	NameProperty  string `yaml:"name_property" split_words:"true"`
	FineLevel     int    `yaml:"fine_level" split_words:"true" validate:"gte=0"`
}

// HierarchyConfig controls coarse/fine code grouping
type HierarchyConfig struct {
	CoarseLength int `yaml:"coarse_length" split_words:"true" validate:"gte=1"`
	FineLength   int `yaml:"fine_length" split_words:"true" validate:"gtfield=CoarseLength"`
	// GroupingOverrides are prefixes that become the grouping key as a whole
	// for every fine code starting with them.
	GroupingOverrides []string `yaml:"grouping_overrides" split_words:"true"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" split_words:"true"`
	ExportsDir string `yaml:"exports_dir" split_words:"true"`
	LogsDir    string `yaml:"logs_dir" split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" split_words:"true"`
	Port            int           `yaml:"port" split_words:"true" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" split_words:"true"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" split_words:"true"`
	// CORSOrigins lists browser origins allowed to call the API; empty allows any
	CORSOrigins []string `yaml:"cors_origins" split_words:"true"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// TelemetryConfig controls OpenTelemetry exporters
type TelemetryConfig struct {
	EnableMetrics bool   `yaml:"enable_metrics" split_words:"true"`
	EnableTracing bool   `yaml:"enable_tracing" split_words:"true"`
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	Environment   string `yaml:"environment" split_words:"true"`
}

// Load builds the configuration: defaults, then the YAML file at path (if any),
// then .env, then EVMAP_* environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigError("failed to load .env", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// yaml.v2 merges into non-nil maps; a year map given in the file replaces the default.
	vehicleYears := cfg.Sources.Vehicles.YearColumns
	environmentYears := cfg.Sources.Environment.YearColumns
	cfg.Sources.Vehicles.YearColumns = nil
	cfg.Sources.Environment.YearColumns = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	if cfg.Sources.Vehicles.YearColumns == nil {
		cfg.Sources.Vehicles.YearColumns = vehicleYears
	}
	if cfg.Sources.Environment.YearColumns == nil {
		cfg.Sources.Environment.YearColumns = environmentYears
	}
	return nil
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	locations := []string{
		"evmap.yaml",
		"configs/evmap.yaml",
		"../configs/evmap.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return ""
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	for _, src := range []struct {
		name string
		cfg  SourceConfig
	}{{"vehicles", c.Sources.Vehicles}, {"environment", c.Sources.Environment}} {
		if src.cfg.LabelColumn != "" && src.cfg.LabelColumn == src.cfg.RegionColumn {
			return fmt.Errorf("%s: label column must differ from region column", src.name)
		}
		if _, clash := src.cfg.YearColumns[src.cfg.RegionColumn]; clash {
			return fmt.Errorf("%s: region column %q is also mapped to a year", src.name, src.cfg.RegionColumn)
		}
	}

	return nil
}

// GetPaths returns the resolved filesystem layout
func (c *Config) GetPaths() *Paths {
	return NewPaths(c.Paths)
}

// Default returns the configuration matching the observed Eurostat exports
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			Vehicles: SourceConfig{
				Path:           DefaultVehiclesWorkbook,
				SheetName:      "Sheet 3",
				HeaderSkipRows: 8,
				SubHeaderRows:  1,
				RegionColumn:   "TIME",
				LabelColumn:    "TIME.1",
				MinCodeLength:  2,
				YearColumns:    YearRange(2018, 2022),
			},
			Environment: SourceConfig{
				Path:           DefaultEnvironmentWorkbook,
				SheetName:      "Sheet 1",
				HeaderSkipRows: 8,
				SubHeaderRows:  1,
				RegionColumn:   "TIME",
				RegionIsName:   true,
				MinCodeLength:  2,
				YearColumns:    YearRange(2013, 2022),
			},
			DeriveNames: true,
		},
		Reference: ReferenceConfig{
			GeoJSONPath:   DefaultReferenceGeoJSON,
			CodeProperty:  "NUTS_ID",
			LevelProperty: "LEVL_CODE",
			NameProperty:  "NAME_LATN",
			FineLevel:     2,
		},
		Hierarchy: HierarchyConfig{
			CoarseLength:      3,
			FineLength:        4,
			GroupingOverrides: []string{"FRY"},
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ExportsDir: DefaultExportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    DefaultRateLimit,
			RateLimitBurst:  DefaultBurstSize,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: "logs/evmap.log",
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "none",
			Environment:   "development",
		},
	}
}

// YearRange maps the literal year labels first..last to their years
func YearRange(first, last int) map[string]int {
	years := make(map[string]int, last-first+1)
	for y := first; y <= last; y++ {
		years[fmt.Sprint(y)] = y
	}
	return years
}
