// Package roster ingests bulk guest rows: it normalizes names, deduplicates
// against the store, and reconstructs plausible check-in history from
// loosely-structured flags and timestamps.
package roster

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/doorlist/doorlist/internal/clock"
)

var (
	multispaceRE = regexp.MustCompile(`\s+`)
	andSplitRE   = regexp.MustCompile(`(?i)\s+and\s+`)
)

// Row is one raw input row as it arrives from a spreadsheet: everything is
// an optional free-form string except the provenance marker.
type Row struct {
	MemberName   string `json:"memberName"`
	GuestNames   string `json:"guestNames"`
	SourceRow    *int64 `json:"sourceRow,omitempty"`
	CheckIn      string `json:"checkIn"`
	CheckInTime  string `json:"checkInTime"`
	CheckOut     string `json:"checkOut"`
	CheckOutTime string `json:"checkOutTime"`
}

// ParsedRow is the deterministic interpretation of a Row: cleaned host and
// guest names, coerced flags, and timestamps normalized to the canonical
// time-of-day format (empty when absent or unparseable).
type ParsedRow struct {
	Host       string
	Guests     []string
	SourceRow  *int64
	CheckedIn  bool
	CheckedOut bool
	InTime     string
	OutTime    string
}

// ParseRow coerces a raw row. It is a pure function: ambiguous input has
// exactly one resolution here, and storage is never consulted.
// loc is the zone timezone-aware timestamps are converted into.
func ParseRow(row Row, loc *time.Location) ParsedRow {
	return ParsedRow{
		Host:       collapseWhitespace(row.MemberName),
		Guests:     splitGuestNames(row.GuestNames),
		SourceRow:  row.SourceRow,
		CheckedIn:  parseFlag(row.CheckIn),
		CheckedOut: parseFlag(row.CheckOut),
		InTime:     parseTimestamp(row.CheckInTime, loc),
		OutTime:    parseTimestamp(row.CheckOutTime, loc),
	}
}

// parseFlag reports whether a free-form flag string is truthy.
func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true", "1", "checked", "in":
		return true
	default:
		return false
	}
}

// Time-only layouts tried first, then combined date-time layouts.
// The first layout that parses wins.
var (
	timeLayouts = []string{
		"3:04:05 PM",
		"3:04 PM",
		"15:04:05",
		"15:04",
		"0304PM",
		"150405",
	}
	dateTimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
	}
)

// parseTimestamp coerces a free-form time string to the canonical
// time-of-day format. Timezone-aware input is converted to loc first.
// Unparseable or empty input yields "" (not an error).
func parseTimestamp(value string, loc *time.Location) string {
	raw := normalizeMeridiem(strings.TrimSpace(value))
	if raw == "" {
		return ""
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return clock.Stamp(t)
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return clock.Stamp(t)
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return clock.Stamp(t.In(loc))
	}

	return ""
}

// normalizeMeridiem uppercases a trailing am/pm marker so the 12-hour
// layouts accept spreadsheet values like "2:30 pm".
func normalizeMeridiem(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	switch strings.ToUpper(raw[len(raw)-2:]) {
	case "AM", "PM":
		return raw[:len(raw)-2] + strings.ToUpper(raw[len(raw)-2:])
	}
	return raw
}

// splitGuestNames breaks a combined guest-names field into cleaned
// individual names. Standalone "and" (any case) and "&" both act as commas.
func splitGuestNames(input string) []string {
	replaced := andSplitRE.ReplaceAllString(input, ",")
	replaced = strings.ReplaceAll(replaced, "&", ",")

	var names []string
	for _, part := range strings.Split(replaced, ",") {
		if name, ok := cleanName(part); ok {
			names = append(names, name)
		}
	}
	return names
}

var (
	upperCaser = cases.Upper(language.English)
	lowerCaser = cases.Lower(language.English)
)

// cleanName trims and collapses whitespace, and re-cases a name that is
// entirely uppercase letters to title case (first letter of each
// whitespace-separated token upper, the rest lower). Empty results are
// dropped.
func cleanName(value string) (string, bool) {
	out := collapseWhitespace(value)
	if out == "" {
		return "", false
	}
	if isAllCaps(out) {
		tokens := strings.Split(out, " ")
		for i, tok := range tokens {
			tokens[i] = titleToken(tok)
		}
		out = strings.Join(tokens, " ")
	}
	return out, true
}

func titleToken(tok string) string {
	if tok == "" {
		return tok
	}
	r, size := utf8.DecodeRuneInString(tok)
	return upperCaser.String(string(r)) + lowerCaser.String(tok[size:])
}

func collapseWhitespace(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return multispaceRE.ReplaceAllString(trimmed, " ")
}

// isAllCaps reports whether the value's letters are all uppercase.
// Values with no letters at all are not considered all-caps.
func isAllCaps(value string) bool {
	sawLetter := false
	for _, r := range value {
		if !unicode.IsLetter(r) {
			continue
		}
		sawLetter = true
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return sawLetter
}

// history reconstructs the single plausible visit implied by the row's
// flags and timestamps. ok is false when no signal is present at all.
// now supplies the current time-of-day stamp for fallbacks.
func (p ParsedRow) history(now func() string) (inTS string, outTS *string, ok bool) {
	if !p.CheckedIn && !p.CheckedOut && p.InTime == "" && p.OutTime == "" {
		return "", nil, false
	}

	inTS = p.InTime
	if inTS == "" {
		if p.OutTime != "" {
			inTS = p.OutTime
		} else {
			inTS = now()
		}
	}

	if p.CheckedOut || p.OutTime != "" {
		out := p.OutTime
		if out == "" {
			out = inTS
		}
		if out == "" {
			out = now()
		}
		outTS = &out
	}

	return inTS, outTS, true
}
