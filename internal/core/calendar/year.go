// Package calendar normalizes year representations found in business dates.
//
// Historical documents imported from the previous system carry Buddhist-era
// years (BE = CE + 543). Counters and archive partitions are always keyed by
// the Gregorian year, so every issue and close date goes through this package
// before a year is derived from it.
package calendar

import "time"

// buddhistEraOffset is the fixed offset between Buddhist and Gregorian years.
const buddhistEraOffset = 543

// beThreshold: no Gregorian business date in this system predates 1900 or
// passes 2400, so any year at or above it is a Buddhist-era year.
const beThreshold = 2400

// NormalizeYear converts a possibly Buddhist-era year to Gregorian.
func NormalizeYear(year int) int {
	if year >= beThreshold {
		return year - buddhistEraOffset
	}
	return year
}

// GregorianYear returns the Gregorian calendar year of t, normalizing
// Buddhist-era representations.
func GregorianYear(t time.Time) int {
	return NormalizeYear(t.Year())
}
