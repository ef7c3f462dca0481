package dataprocessing

import (
	"slices"
	"strings"

	"evmap/internal/config"
	"evmap/pkg/contracts/domain"
)

// Hierarchy maps each coarse grouping key to the fine codes nested under it.
// It is built once from the reference dataset and never modified.
type Hierarchy struct {
	coarseLength int
	fineLength   int
	overrides    []string
	children     map[string][]string
}

// NewHierarchy groups fine codes by coarse prefix. Codes of any other length are ignored.
func NewHierarchy(fineCodes []string, cfg config.HierarchyConfig) *Hierarchy {
	h := &Hierarchy{
		coarseLength: cfg.CoarseLength,
		fineLength:   cfg.FineLength,
		children:     make(map[string][]string),
	}
	for _, o := range cfg.GroupingOverrides {
		if o = domain.NormalizeRegionCode(o); o != "" {
			h.overrides = append(h.overrides, o)
		}
	}
	// Longest override first so a more specific prefix wins.
	slices.SortFunc(h.overrides, func(a, b string) int { return len(b) - len(a) })

	for _, code := range fineCodes {
		code = domain.NormalizeRegionCode(code)
		if len(code) != h.fineLength {
			continue
		}
		key := h.GroupKey(code)
		if !slices.Contains(h.children[key], code) {
			h.children[key] = append(h.children[key], code)
		}
	}
	for key := range h.children {
		slices.Sort(h.children[key])
	}
	return h
}

// GroupKey returns the coarse key a fine code belongs to: a matching override
// prefix as a whole, otherwise the first coarse-length characters.
func (h *Hierarchy) GroupKey(code string) string {
	for _, o := range h.overrides {
		if strings.HasPrefix(code, o) {
			return o
		}
	}
	if len(code) < h.coarseLength {
		return code
	}
	return code[:h.coarseLength]
}

// Children returns the sorted fine codes under a coarse code
func (h *Hierarchy) Children(coarse string) []string {
	return slices.Clone(h.children[domain.NormalizeRegionCode(coarse)])
}

// CoarseLength is the length of codes treated as coarse records
func (h *Hierarchy) CoarseLength() int { return h.coarseLength }

// FineLength is the length of codes kept after completion
func (h *Hierarchy) FineLength() int { return h.fineLength }
