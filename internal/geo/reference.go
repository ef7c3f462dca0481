package geo

import (
	"context"
	"os"
	"sort"

	"github.com/tidwall/gjson"

	"evmap/internal/config"
	apperrors "evmap/internal/errors"
	"evmap/internal/validation"
	"evmap/pkg/contracts/domain"
)

// ReferenceSource names the reference dataset in SourceUnavailable errors
const ReferenceSource = "reference"

// Region is one feature of the reference dataset
type Region struct {
	Code  string `json:"code"`
	Level int    `json:"level"`
	Name  string `json:"name,omitempty"`
}

// Reference is the immutable set of regions known to the geometry dataset
type Reference struct {
	regions map[string]Region
	codes   []string
}

// NewReference indexes regions by normalized code. Later duplicates are ignored.
func NewReference(regions []Region) *Reference {
	ref := &Reference{regions: make(map[string]Region, len(regions))}
	for _, r := range regions {
		r.Code = domain.NormalizeRegionCode(r.Code)
		if r.Code == "" {
			continue
		}
		if _, dup := ref.regions[r.Code]; dup {
			continue
		}
		ref.regions[r.Code] = r
		ref.codes = append(ref.codes, r.Code)
	}
	sort.Strings(ref.codes)
	return ref
}

// LoadReference reads a GeoJSON FeatureCollection and collects code, level and name
// from each feature's properties. An unreadable or malformed file is SourceUnavailable.
func LoadReference(ctx context.Context, cfg config.ReferenceConfig) (*Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := validation.NewFileValidator(nil).ValidateReference(cfg.GeoJSONPath); err != nil {
		return nil, apperrors.NewSourceUnavailableError(ReferenceSource, cfg.GeoJSONPath, err)
	}

	data, err := os.ReadFile(cfg.GeoJSONPath)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(ReferenceSource, cfg.GeoJSONPath, err)
	}
	return ParseReference(data, cfg)
}

// ParseReference extracts regions from GeoJSON bytes
func ParseReference(data []byte, cfg config.ReferenceConfig) (*Reference, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperrors.NewSourceUnavailableError(ReferenceSource, cfg.GeoJSONPath,
			apperrors.NewParsingError("invalid GeoJSON document", nil))
	}

	features := gjson.GetBytes(data, "features")
	if !features.IsArray() {
		return nil, apperrors.NewSourceUnavailableError(ReferenceSource, cfg.GeoJSONPath,
			apperrors.NewParsingError("document has no features array", nil))
	}

	codePath := "properties." + gjson.Escape(cfg.CodeProperty)
	levelPath := "properties." + gjson.Escape(cfg.LevelProperty)
	namePath := "properties." + gjson.Escape(cfg.NameProperty)

	var regions []Region
	features.ForEach(func(_, feature gjson.Result) bool {
		code := feature.Get(codePath)
		if !code.Exists() {
			return true
		}
		region := Region{
			Code:  code.String(),
			Level: int(feature.Get(levelPath).Int()),
		}
		if cfg.NameProperty != "" {
			region.Name = feature.Get(namePath).String()
		}
		regions = append(regions, region)
		return true
	})

	return NewReference(regions), nil
}

// CodesAtLevel returns the sorted codes whose nesting level equals level
func (r *Reference) CodesAtLevel(level int) []string {
	var codes []string
	for _, code := range r.codes {
		if r.regions[code].Level == level {
			codes = append(codes, code)
		}
	}
	return codes
}

// Name returns the reference name of a code, if any
func (r *Reference) Name(code string) (string, bool) {
	region, ok := r.regions[domain.NormalizeRegionCode(code)]
	if !ok || region.Name == "" {
		return "", false
	}
	return region.Name, true
}

// Len returns the number of regions
func (r *Reference) Len() int {
	return len(r.codes)
}
