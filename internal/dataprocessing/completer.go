package dataprocessing

import (
	"slices"

	"evmap/pkg/contracts/domain"
)

// CompletionReport lists what hierarchy completion did with each coarse code
type CompletionReport struct {
	// Replicated coarse codes had no fine data and were copied to their children
	Replicated []string `json:"replicated"`
	// SupersededCoarse codes were discarded because fine data already existed
	SupersededCoarse []string `json:"superseded_coarse"`
	// DroppedCoarse codes had no known children; their data is lost
	DroppedCoarse []string `json:"dropped_coarse"`
	// Synthesized counts the records created by replication
	Synthesized int `json:"synthesized"`
	// Discarded counts input records removed for not being fine-level
	Discarded int `json:"discarded"`
}

// CompleteHierarchy expands coarse-only regions into their fine children and
// returns a table holding fine-length codes only.
//
// A coarse code is expanded when no fine record in its group (see GroupKey) exists in any
// year. Each coarse record is then copied unchanged to every child. All coarse
// records are discarded afterwards, expanded or not. Input fine records keep
// their order and synthesized records follow them, coarse codes in sorted order.
func CompleteHierarchy(records []domain.Record, h *Hierarchy) ([]domain.Record, CompletionReport) {
	var report CompletionReport

	hasFine := make(map[string]struct{})
	coarse := make(map[string][]domain.Record)
	out := make([]domain.Record, 0, len(records))

	for _, rec := range records {
		switch len(rec.Region) {
		case h.fineLength:
			out = append(out, rec)
			hasFine[h.GroupKey(rec.Region)] = struct{}{}
		case h.coarseLength:
			coarse[rec.Region] = append(coarse[rec.Region], rec)
			report.Discarded++
		default:
			report.Discarded++
		}
	}

	codes := make([]string, 0, len(coarse))
	for code := range coarse {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		key := h.GroupKey(code)
		if _, ok := hasFine[key]; ok {
			report.SupersededCoarse = append(report.SupersededCoarse, code)
			continue
		}

		children := h.Children(key)
		if len(children) == 0 {
			report.DroppedCoarse = append(report.DroppedCoarse, code)
			continue
		}

		report.Replicated = append(report.Replicated, code)
		for _, rec := range coarse[code] {
			for _, child := range children {
				out = append(out, domain.Record{Region: child, Year: rec.Year, Value: rec.Value})
				report.Synthesized++
			}
		}
	}

	return out, report
}

// SplitByLength separates records whose code has exactly length characters
func SplitByLength(records []domain.Record, length int) (matched, rest []domain.Record) {
	for _, rec := range records {
		if len(rec.Region) == length {
			matched = append(matched, rec)
		} else {
			rest = append(rest, rec)
		}
	}
	return matched, rest
}
