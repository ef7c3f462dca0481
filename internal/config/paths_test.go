package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths_Defaults(t *testing.T) {
	p := NewPaths(PathsConfig{})

	assert.Equal(t, DefaultDataDir, p.DataDir)
	assert.Equal(t, DefaultExportsDir, p.ExportsDir)
	assert.Equal(t, DefaultLogsDir, p.LogsDir)
}

func TestPaths_Resolve(t *testing.T) {
	p := NewPaths(PathsConfig{DataDir: "/srv/data", ExportsDir: "/srv/out", LogsDir: "/srv/logs"})

	assert.Equal(t, filepath.Join("/srv/data", "ev.xlsx"), p.GetDataPath("ev.xlsx"))
	assert.Equal(t, "/abs/ev.xlsx", p.GetDataPath("/abs/ev.xlsx"))
	assert.Equal(t, filepath.Join("/srv/out", "agg.csv"), p.GetExportPath("agg.csv"))
	assert.Equal(t, filepath.Join("/srv/logs", "evmap.log"), p.GetLogPath("evmap.log"))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(PathsConfig{
		DataDir:    filepath.Join(base, "data"),
		ExportsDir: filepath.Join(base, "exports"),
		LogsDir:    filepath.Join(base, "logs"),
	})

	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.ExportsDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, FileExists(p.LogsDir))
	assert.False(t, FileExists(filepath.Join(base, "nope")))
}
