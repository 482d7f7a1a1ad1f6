package weather

import "strings"

// Known roofed venues that host college football. Matched exactly
// (case-insensitive) before the substring rule.
var domeVenues = map[string]bool{
	"mercedes-benz stadium":   true,
	"caesars superdome":       true,
	"mercedes-benz superdome": true,
	"ford field":              true,
	"lucas oil stadium":       true,
	"alamodome":               true,
	"jma wireless dome":       true,
	"carrier dome":            true,
	"nrg stadium":             true,
	"allegiant stadium":       true,
	"state farm stadium":      true,
	"u.s. bank stadium":       true,
	"at&t stadium":            true,
	"tropicana field":         true,
	"unidome":                 true,
	"fargodome":               true,
	"kibbie dome":             true,
	"walkup skydome":          true,
}

// IsDome reports whether a venue plays under a roof: an exact allow-list
// match, or a name containing "dome", "indoor" or "covered".
func IsDome(venueName string) bool {
	name := strings.ToLower(strings.TrimSpace(venueName))
	if name == "" {
		return false
	}
	if domeVenues[name] {
		return true
	}
	for _, marker := range []string{"dome", "indoor", "covered"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
