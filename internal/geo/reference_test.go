package geo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evmap/internal/config"
	apperrors "evmap/internal/errors"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NUTS_ID": "PL", "LEVL_CODE": 0, "NAME_LATN": "Polska"}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "PL1", "LEVL_CODE": 1, "NAME_LATN": "Makroregion"}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": "PL12", "LEVL_CODE": 2, "NAME_LATN": "Mazowiecki"}, "geometry": {"type": "Point", "coordinates": [21.0, 52.2]}},
    {"type": "Feature", "properties": {"NUTS_ID": "PL11", "LEVL_CODE": "2", "NAME_LATN": "Łódzkie"}, "geometry": null},
    {"type": "Feature", "properties": {"NUTS_ID": " fry1 ", "LEVL_CODE": 2}, "geometry": null},
    {"type": "Feature", "properties": {"LEVL_CODE": 2}, "geometry": null}
  ]
}`

func testReferenceConfig(path string) config.ReferenceConfig {
	cfg := config.Default().Reference
	cfg.GeoJSONPath = path
	return cfg
}

func TestLoadReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nuts.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeoJSON), 0644))

	ref, err := LoadReference(context.Background(), testReferenceConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 5, ref.Len())
	assert.Equal(t, []string{"FRY1", "PL11", "PL12"}, ref.CodesAtLevel(2))
	assert.Equal(t, []string{"PL1"}, ref.CodesAtLevel(1))

	name, ok := ref.Name("pl12")
	assert.True(t, ok)
	assert.Equal(t, "Mazowiecki", name)

	_, ok = ref.Name("FRY1")
	assert.False(t, ok, "feature without a name property")
}

func TestLoadReference_SourceUnavailable(t *testing.T) {
	tests := []struct {
		name      string
		content   *string
		malformed bool
	}{
		{name: "missing file"},
		{name: "not json", content: ptr("<xml/>"), malformed: true},
		{name: "no features", content: ptr(`{"type":"FeatureCollection"}`), malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nuts.geojson")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0644))
			}

			_, err := LoadReference(context.Background(), testReferenceConfig(path))
			require.Error(t, err)
			assert.True(t, apperrors.IsSourceUnavailable(err))
			if tt.malformed {
				assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(errors.Unwrap(err)))
			}
		})
	}
}

func TestLoadReference_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadReference(ctx, testReferenceConfig("unused"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisplayName(t *testing.T) {
	name, ok := DisplayName(" pl ")
	assert.True(t, ok)
	assert.Equal(t, "Polska", name)

	_, ok = DisplayName("XX")
	assert.False(t, ok)

	names := DisplayNames()
	names["PL"] = "changed"
	again, _ := DisplayName("PL")
	assert.Equal(t, "Polska", again)
}

func ptr(s string) *string { return &s }
