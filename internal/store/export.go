package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ExportRow is one guest in the snapshot export: a flat, denormalized view
// with the most recent in/out timestamps and derived presence flags.
// Guests with no history have false flags and nil timestamps.
type ExportRow struct {
	GuestName  string
	MemberHost *string
	IsIn       bool
	LastIn     *string
	LastOut    *string
}

// ExportRows returns one row per guest, alphabetical by name.
func (s *Store) ExportRows(ctx context.Context) ([]ExportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.display_name, g.member_host,
			MAX(CASE WHEN c.id IS NOT NULL AND c.out_ts IS NULL THEN 1 ELSE 0 END) AS is_in,
			MAX(c.in_ts) AS last_in,
			MAX(c.out_ts) AS last_out
		FROM guests g
		LEFT JOIN checkins c ON c.guest_id = g.id
		GROUP BY g.id
		ORDER BY g.display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var (
			r                     ExportRow
			host, lastIn, lastOut sql.NullString
			isIn                  int
		)
		if err := rows.Scan(&r.GuestName, &host, &isIn, &lastIn, &lastOut); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		r.MemberHost = strPtr(host)
		r.IsIn = isIn != 0
		r.LastIn = strPtr(lastIn)
		r.LastOut = strPtr(lastOut)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}

	if out == nil {
		out = []ExportRow{}
	}
	return out, nil
}
