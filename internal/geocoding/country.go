package geocoding

import (
	"strings"

	"github.com/biter777/countries"
)

// CountryCode resolves a free-text country name to its ISO alpha-2 code, or
// "" when the name is not recognised.
func CountryCode(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	c := countries.ByName(name)
	if c == countries.Unknown {
		return ""
	}
	return c.Alpha2()
}

// SameCountry reports whether two names refer to the same country, so the
// geocoder's "Russian Federation" matches an alias table's "Russia".
func SameCountry(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	ca, cb := CountryCode(a), CountryCode(b)
	return ca != "" && ca == cb
}
