package geo

import "evmap/pkg/contracts/domain"

// countryNames are the Polish display names used to label country-level series
var countryNames = map[string]string{
	"AT": "Austria",
	"BA": "Bośnia i Hercegowina",
	"BE": "Belgia",
	"BG": "Bułgaria",
	"CH": "Szwajcaria",
	"CY": "Cypr",
	"CZ": "Czechy",
	"DE": "Niemcy",
	"DK": "Dania",
	"EE": "Estonia",
	"EL": "Grecja",
	"ES": "Hiszpania",
	"FI": "Finlandia",
	"FR": "Francja",
	"HR": "Chorwacja",
	"HU": "Węgry",
	"IE": "Irlandia",
	"IS": "Islandia",
	"IT": "Włochy",
	"LI": "Liechtenstein",
	"LT": "Litwa",
	"LU": "Luksemburg",
	"LV": "Łotwa",
	"MT": "Malta",
	"NL": "Holandia",
	"NO": "Norwegia",
	"PL": "Polska",
	"PT": "Portugalia",
	"RO": "Rumunia",
	"SE": "Szwecja",
	"SI": "Słowenia",
	"SK": "Słowacja",
	"UK": "Wielka Brytania",
}

// DisplayName returns the localized name of a country code
func DisplayName(code string) (string, bool) {
	name, ok := countryNames[domain.NormalizeRegionCode(code)]
	return name, ok
}

// DisplayNames returns a copy of the localized country names
func DisplayNames() map[string]string {
	out := make(map[string]string, len(countryNames))
	for code, name := range countryNames {
		out[code] = name
	}
	return out
}
