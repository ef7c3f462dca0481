package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves every file location used by ingestion and export
type Paths struct {
	DataDir    string
	ExportsDir string
	LogsDir    string
}

// NewPaths builds Paths from configuration, falling back to defaults for empty entries
func NewPaths(cfg PathsConfig) *Paths {
	p := &Paths{
		DataDir:    cfg.DataDir,
		ExportsDir: cfg.ExportsDir,
		LogsDir:    cfg.LogsDir,
	}
	if p.DataDir == "" {
		p.DataDir = DefaultDataDir
	}
	if p.ExportsDir == "" {
		p.ExportsDir = DefaultExportsDir
	}
	if p.LogsDir == "" {
		p.LogsDir = DefaultLogsDir
	}
	return p
}

// GetDataPath resolves an input file. Absolute paths are returned unchanged.
func (p *Paths) GetDataPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.DataDir, filename)
}

// GetExportPath resolves an export file. Absolute paths are returned unchanged.
func (p *Paths) GetExportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath resolves a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates the writable directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("resolved paths",
		slog.String("data_dir", p.DataDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
