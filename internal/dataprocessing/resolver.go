package dataprocessing

import (
	"strings"

	"evmap/pkg/contracts/domain"
)

// CountryCodeLength is the length of national (NUTS0) codes
const CountryCodeLength = 2

// Resolver maps a region display name to its code
type Resolver interface {
	Resolve(name string) (string, bool)
}

// staticCountryCodes maps English country labels, as printed in the exports, to codes
var staticCountryCodes = map[string]string{
	"Germany":                "DE",
	"France":                 "FR",
	"Italy":                  "IT",
	"Spain":                  "ES",
	"Poland":                 "PL",
	"Netherlands":            "NL",
	"Belgium":                "BE",
	"Sweden":                 "SE",
	"Finland":                "FI",
	"Austria":                "AT",
	"Portugal":               "PT",
	"Czechia":                "CZ",
	"Denmark":                "DK",
	"Greece":                 "EL",
	"Hungary":                "HU",
	"Ireland":                "IE",
	"Slovakia":               "SK",
	"Slovenia":               "SI",
	"Croatia":                "HR",
	"Estonia":                "EE",
	"Latvia":                 "LV",
	"Lithuania":              "LT",
	"Luxembourg":             "LU",
	"Bulgaria":               "BG",
	"Romania":                "RO",
	"Norway":                 "NO",
	"Switzerland":            "CH",
	"Iceland":                "IS",
	"Cyprus":                 "CY",
	"United Kingdom":         "UK",
	"Malta":                  "MT",
	"Liechtenstein":          "LI",
	"Bosnia and Herzegovina": "BA",
}

// NameIndex is an immutable exact-match lookup from display name to region code
type NameIndex struct {
	codes map[string]string
}

// StaticNameIndex returns the index built from the fixed country table
func StaticNameIndex() *NameIndex {
	return NewNameIndex(nil)
}

// NewNameIndex merges derived label/code pairs under the static table.
// Static entries win on conflict; derived pairs only add names the table lacks.
func NewNameIndex(derived map[string]string) *NameIndex {
	codes := make(map[string]string, len(staticCountryCodes)+len(derived))
	for name, code := range derived {
		name = strings.TrimSpace(name)
		code = domain.NormalizeRegionCode(code)
		if name == "" || code == "" {
			continue
		}
		codes[name] = code
	}
	for name, code := range staticCountryCodes {
		codes[name] = code
	}
	return &NameIndex{codes: codes}
}

// Resolve trims the name and looks it up exactly; case matters.
// A miss is expected for aggregate rows such as "EU-27".
func (n *NameIndex) Resolve(name string) (string, bool) {
	code, ok := n.codes[strings.TrimSpace(name)]
	return code, ok
}

// Names returns a copy of the index
func (n *NameIndex) Names() map[string]string {
	out := make(map[string]string, len(n.codes))
	for name, code := range n.codes {
		out[name] = code
	}
	return out
}

// Len returns the number of names
func (n *NameIndex) Len() int {
	return len(n.codes)
}
