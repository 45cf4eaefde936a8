package dataset

import (
	"regexp"
	"strconv"
)

// shapePattern matches two numeric tokens (integer or decimal, optionally
// negative) separated by whitespace, with optional surrounding parentheses.
// It matches anywhere in the cell, so WKT like "POINT (16.4 48.2)" works
// as well as a bare "16.4 48.2" pair.
var shapePattern = regexp.MustCompile(`\(?\s*(-?[0-9]+(?:\.[0-9]+)?)\s+(-?[0-9]+(?:\.[0-9]+)?)\s*\)?`)

// ExtractPoint parses a SHAPE cell into (lon, lat). The first captured
// token is longitude, the second latitude. ok is false when the cell does
// not contain a coordinate pair.
func ExtractPoint(shape string) (lon, lat float64, ok bool) {
	m := shapePattern.FindStringSubmatch(shape)
	if m == nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	return lon, lat, true
}
