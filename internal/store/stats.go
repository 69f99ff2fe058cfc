package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Rollup caps. The present list is truncated to PresentListLimit rows.
const (
	PresentListLimit = 200
	TopHostsLimit    = 10
)

// PresentGuest is one currently-present guest in the stats rollup.
type PresentGuest struct {
	ID          int64   `json:"id"`
	DisplayName string  `json:"display_name"`
	MemberHost  *string `json:"member_host,omitempty"`
	InTS        *string `json:"in_ts,omitempty"`
	Operator    *string `json:"operator,omitempty"`
}

// Stats is a read-only snapshot of the attendance log.
type Stats struct {
	TotalGuests    int64 `json:"total_guests"`
	TotalCheckIns  int64 `json:"total_check_ins"`
	TotalCheckOuts int64 `json:"total_check_outs"`
	// CurrentlyPresent is the size of PresentGuests, which is capped at
	// PresentListLimit; sites with more simultaneous present guests will
	// see an undercount here.
	CurrentlyPresent int64          `json:"currently_present"`
	PresentGuests    []PresentGuest `json:"present_guests"`
	TopHosts         []MemberResult `json:"top_hosts"`
}

// Snapshot computes the full stats rollup.
func (s *Store) Snapshot(ctx context.Context) (Stats, error) {
	var stats Stats

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests`).Scan(&stats.TotalGuests)
	if err != nil {
		return Stats{}, fmt.Errorf("count guests: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM checkins WHERE in_ts IS NOT NULL),
			(SELECT COUNT(*) FROM checkins WHERE out_ts IS NOT NULL)
	`).Scan(&stats.TotalCheckIns, &stats.TotalCheckOuts)
	if err != nil {
		return Stats{}, fmt.Errorf("count events: %w", err)
	}

	present, err := s.presentGuests(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.PresentGuests = present
	stats.CurrentlyPresent = int64(len(present))

	hosts, err := s.topHosts(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.TopHosts = hosts

	return stats, nil
}

// presentGuests lists guests with an open event, newest check-in first,
// capped at PresentListLimit.
func (s *Store) presentGuests(ctx context.Context) ([]PresentGuest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.display_name, g.member_host, c.in_ts, c.in_by
		FROM checkins c
		JOIN guests g ON g.id = c.guest_id
		WHERE c.out_ts IS NULL
		ORDER BY c.in_ts DESC
		LIMIT ?
	`, PresentListLimit)
	if err != nil {
		return nil, fmt.Errorf("query present guests: %w", err)
	}
	defer rows.Close()

	var present []PresentGuest
	for rows.Next() {
		var (
			p                PresentGuest
			host, inTS, inBy sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.DisplayName, &host, &inTS, &inBy); err != nil {
			return nil, fmt.Errorf("scan present guest: %w", err)
		}
		p.MemberHost = strPtr(host)
		p.InTS = strPtr(inTS)
		p.Operator = strPtr(inBy)
		present = append(present, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate present guests: %w", err)
	}

	if present == nil {
		present = []PresentGuest{}
	}
	return present, nil
}

// topHosts ranks hosts by present count, then total count.
func (s *Store) topHosts(ctx context.Context) ([]MemberResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.member_host AS host,
			COUNT(*) AS total_guests,
			SUM(CASE WHEN EXISTS(SELECT 1 FROM checkins c WHERE c.guest_id = g.id AND c.out_ts IS NULL) THEN 1 ELSE 0 END) AS present_guests
		FROM guests g
		WHERE g.member_host IS NOT NULL AND g.member_host != ''
		GROUP BY host
		ORDER BY present_guests DESC, total_guests DESC
		LIMIT ?
	`, TopHostsLimit)
	if err != nil {
		return nil, fmt.Errorf("query top hosts: %w", err)
	}
	defer rows.Close()

	var hosts []MemberResult
	for rows.Next() {
		var m MemberResult
		if err := rows.Scan(&m.MemberHost, &m.TotalGuests, &m.PresentGuests); err != nil {
			return nil, fmt.Errorf("scan host: %w", err)
		}
		hosts = append(hosts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top hosts: %w", err)
	}

	if hosts == nil {
		hosts = []MemberResult{}
	}
	return hosts, nil
}
