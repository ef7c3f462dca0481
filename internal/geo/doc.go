// Package geo loads the NUTS reference dataset and provides display names for region codes.
//
// Only feature properties are read; geometry stays in the file for map front-ends.
package geo
