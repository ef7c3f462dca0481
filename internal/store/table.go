// Package store holds the immutable normalized tables produced by ingestion.
package store

import (
	"iter"
	"slices"

	"evmap/pkg/contracts/domain"
)

// Table is the long-form (region, year, value) table of one source.
// It is never mutated after NewTable returns, so concurrent readers need no locking.
type Table struct {
	source  domain.Source
	records []domain.Record
	first   map[domain.RecordKey]int
	regions []string
	years   []int
}

// NewTable copies records and indexes the first occurrence of every key.
// Duplicate keys are kept; point lookups always resolve to the earliest row.
func NewTable(source domain.Source, records []domain.Record) *Table {
	t := &Table{
		source:  source,
		records: slices.Clone(records),
		first:   make(map[domain.RecordKey]int, len(records)),
	}

	regionSet := make(map[string]struct{})
	yearSet := make(map[int]struct{})
	for i, rec := range t.records {
		if _, seen := t.first[rec.Key()]; !seen {
			t.first[rec.Key()] = i
		}
		regionSet[rec.Region] = struct{}{}
		yearSet[rec.Year] = struct{}{}
	}

	t.regions = make([]string, 0, len(regionSet))
	for region := range regionSet {
		t.regions = append(t.regions, region)
	}
	slices.Sort(t.regions)

	t.years = make([]int, 0, len(yearSet))
	for year := range yearSet {
		t.years = append(t.years, year)
	}
	slices.Sort(t.years)

	return t
}

// Source returns the table's source name
func (t *Table) Source() domain.Source {
	return t.source
}

// Value returns the first stored value for (region, year). A missing key is not an error.
func (t *Table) Value(region string, year int) (float64, bool) {
	i, ok := t.first[domain.RecordKey{Region: domain.NormalizeRegionCode(region), Year: year}]
	if !ok {
		return 0, false
	}
	return t.records[i].Value, true
}

// Regions returns the sorted distinct region codes
func (t *Table) Regions() []string {
	return slices.Clone(t.regions)
}

// Years returns the sorted distinct years
func (t *Table) Years() []int {
	return slices.Clone(t.years)
}

// HasRegion reports whether any record carries the region code
func (t *Table) HasRegion(region string) bool {
	_, found := slices.BinarySearch(t.regions, domain.NormalizeRegionCode(region))
	return found
}

// All iterates the records in ingestion order
func (t *Table) All() iter.Seq[domain.Record] {
	return func(yield func(domain.Record) bool) {
		for _, rec := range t.records {
			if !yield(rec) {
				return
			}
		}
	}
}

// Records returns a copy of the records in ingestion order
func (t *Table) Records() []domain.Record {
	return slices.Clone(t.records)
}

// Len returns the number of records, duplicates included
func (t *Table) Len() int {
	return len(t.records)
}
