// Package clock provides the process-wide wall clock used for attendance
// timestamps. All stored timestamps are time-of-day strings in a single
// configured zone; no date component is persisted.
package clock

import "time"

// StampLayout is the canonical time-of-day format used for storage and
// display: 12-hour, zero-padded, seconds precision, AM/PM marker.
const StampLayout = "03:04:05 PM"

// FileStampLayout is the local-time timestamp embedded in export filenames.
const FileStampLayout = "20060102-150405"

// DefaultZone is the zone used when no timezone is configured.
const DefaultZone = "America/Chicago"

// Clock supplies the current time. Injected so tests can pin it.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the real wall clock in a fixed zone.
type System struct {
	loc *time.Location
}

// NewSystem creates a system clock in the given zone.
// A nil location falls back to UTC.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Stamp formats a moment as the canonical time-of-day string.
func Stamp(t time.Time) string {
	return t.Format(StampLayout)
}

// FileStamp formats a moment for use in export filenames.
func FileStamp(t time.Time) string {
	return t.Format(FileStampLayout)
}
