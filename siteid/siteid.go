// Package siteid cleans the hand-entered site identifiers found in carrier
// link tables and builds link identifiers from them.
package siteid

import (
	"strings"
)

// Code is a site code. A missing code has Valid == false and is never
// confused with an empty string.
type Code struct {
	Value string
	Valid bool
}

// Of returns a present code.
func Of(s string) Code { return Code{Value: s, Valid: true} }

// Missing is the absent code.
var Missing = Code{}

// Lower lowercases a present code.
func (c Code) Lower() Code {
	if !c.Valid {
		return c
	}
	return Of(strings.ToLower(c.Value))
}

func (c Code) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

func (c Code) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// cells spreadsheet and CSV readers hand us for "no value"
var absent = map[string]struct{}{
	"": {}, "nan": {}, "na": {}, "n/a": {}, "null": {}, "none": {}, "#n/a": {},
}

func isAbsent(raw string) bool {
	_, ok := absent[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Normalize extracts the site code from a raw identifier:
//
//   - absent cells are missing;
//   - values made only of digits, '.' and ';' (bare IP addresses) are missing;
//   - "a; b[; ...]" lists keep b when a looks like an IP fragment
//     (contains '.'), otherwise a;
//   - anything else is cut to its first four characters.
//
// Case is preserved; callers lowercase.
func Normalize(raw string) Code {
	if isAbsent(raw) {
		return Missing
	}
	if strings.Trim(raw, ".0123456789;") == "" {
		return Missing
	}
	if parts := strings.Split(raw, "; "); len(parts) > 1 {
		if strings.Contains(parts[0], ".") {
			return Of(parts[1])
		}
		return Of(parts[0])
	}
	r := []rune(raw)
	if len(r) > 4 {
		r = r[:4]
	}
	return Of(string(r))
}

// Link joins two site names as "<a>-<b>" without touching case.
func Link(a, b string) string { return a + "-" + b }

// LinkID builds the lowercase link identifier of two endpoint codes. It is
// missing when either endpoint is.
func LinkID(a, b Code) Code {
	if !a.Valid || !b.Valid {
		return Missing
	}
	return Of(strings.ToLower(Link(a.Value, b.Value)))
}

// SplitLink expands a "site1-site2" token into its two lowercase site codes.
// The token is split on its first '-'.
func SplitLink(token string) (string, string) {
	a, b, _ := strings.Cut(token, "-")
	return strings.ToLower(a), strings.ToLower(b)
}
