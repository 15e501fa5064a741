package session

import (
	"fmt"
	"strings"
	"time"
)

// fracWidth is the fixed fractional-second width timestamps are
// normalized to before parsing.
const fracWidth = 6

// ParseTime parses a persisted ISO-8601 timestamp. Stored expiry values
// may arrive with any fractional-second precision and with "Z", an
// explicit offset, or no offset at all (taken as UTC). The fractional
// part is normalized to a fixed width so every variant parses with one
// layout. A malformed value is an error: expiry comparisons must never
// silently treat corrupt data as expired or live.
func ParseTime(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("session: parse time: empty value")
	}

	// SQL-style "2006-01-02 15:04:05" separators are accepted too.
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	base, frac, zone := splitTimestamp(s)
	frac = normalizeFraction(frac)

	layout := "2006-01-02T15:04:05." + strings.Repeat("0", fracWidth)
	candidate := base + "." + frac

	switch {
	case zone == "" || zone == "Z":
		t, err := time.Parse(layout, candidate)
		if err != nil {
			return time.Time{}, fmt.Errorf("session: parse time %q: %w", value, err)
		}
		return t.UTC(), nil
	default:
		if len(zone) == 5 { // ±hhmm -> ±hh:mm
			zone = zone[:3] + ":" + zone[3:]
		}
		t, err := time.Parse(layout+"-07:00", candidate+zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("session: parse time %q: %w", value, err)
		}
		return t.UTC(), nil
	}
}

// splitTimestamp separates "base[.frac][zone]" where zone is "Z" or a
// ±hh:mm / ±hhmm offset.
func splitTimestamp(s string) (base, frac, zone string) {
	rest := s
	if strings.HasSuffix(rest, "Z") {
		zone = "Z"
		rest = strings.TrimSuffix(rest, "Z")
	} else {
		// An offset sign can only appear after the time component; skip
		// the date part so "2006-01-02" dashes are not mistaken for one.
		for i := len(rest) - 1; i > 10; i-- {
			c := rest[i]
			if c == '+' || c == '-' {
				zone = rest[i:]
				rest = rest[:i]
				break
			}
			if c == 'T' || c == '.' {
				break
			}
		}
	}

	if i := strings.IndexByte(rest, '.'); i >= 0 {
		return rest[:i], rest[i+1:], zone
	}
	return rest, "", zone
}

// normalizeFraction pads or truncates a fractional-second string to the
// fixed width.
func normalizeFraction(frac string) string {
	if len(frac) >= fracWidth {
		return frac[:fracWidth]
	}
	return frac + strings.Repeat("0", fracWidth-len(frac))
}
