package models

import "strings"

// stateCodes maps USPS two-letter codes to state names (50 states plus DC).
var stateCodes = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana",
	"IA": "Iowa", "KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana",
	"ME": "Maine", "MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan",
	"MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri", "MT": "Montana",
	"NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina",
	"ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon",
	"PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// stateNames indexes codes by letters-only upper-cased state name.
var stateNames = map[string]string{}

func init() {
	for code, name := range stateCodes {
		stateNames[stateKey(name)] = code
	}
}

func stateKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// LookupState resolves a raw state value to its two-letter code. The match
// is lenient: non-letters are stripped and case is ignored, and both codes
// ("il") and full names ("illinois") resolve.
func LookupState(raw string) (string, bool) {
	key := stateKey(raw)
	if key == "" {
		return "", false
	}
	if _, ok := stateCodes[key]; ok {
		return key, true
	}
	if code, ok := stateNames[key]; ok {
		return code, true
	}
	return "", false
}

// IsValidState reports whether raw resolves to a member of the enumeration.
func IsValidState(raw string) bool {
	_, ok := LookupState(raw)
	return ok
}
