package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Recognized columns, keyed by normalized header. Both the camelCase export
// keys and human spreadsheet headings ("Member Name") normalize to these.
const (
	colMemberName   = "membername"
	colGuestNames   = "guestnames"
	colSourceRow    = "sourcerow"
	colCheckIn      = "checkin"
	colCheckInTime  = "checkintime"
	colCheckOut     = "checkout"
	colCheckOutTime = "checkouttime"
)

// ReadFile loads raw import rows from a CSV file. The first record is a
// header; columns are matched case-insensitively ignoring spaces and
// punctuation, and missing columns simply leave fields absent. When no
// source-row column exists, rows are numbered 1..n in file order.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("read import file %s: %w", path, err)
	}
	return rows, nil
}

func readRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Export snapshots label the flag columns "Check In Y/N"; accept those
	// so an exported file can be re-imported directly.
	aliases := map[string]string{
		"guestname":  colGuestNames,
		"checkinyn":  colCheckIn,
		"checkoutyn": colCheckOut,
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if canonical, ok := aliases[key]; ok {
			key = canonical
		}
		if key == "" {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	var rows []Row
	for n := 1; ; n++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", n, err)
		}

		field := func(key string) string {
			idx, ok := cols[key]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		row := Row{
			MemberName:   field(colMemberName),
			GuestNames:   field(colGuestNames),
			CheckIn:      field(colCheckIn),
			CheckInTime:  field(colCheckInTime),
			CheckOut:     field(colCheckOut),
			CheckOutTime: field(colCheckOutTime),
		}

		src := int64(n)
		if raw := strings.TrimSpace(field(colSourceRow)); raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				src = v
			}
		}
		row.SourceRow = &src

		rows = append(rows, row)
	}

	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// normalizeHeader lowercases a heading and strips everything that is not a
// letter or digit, so "Member Name", "member_name" and "memberName" all
// map to the same column.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
