package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Search limits. Callers may pass 0 for the default; anything above the
// maximum is clamped.
const (
	DefaultSearchLimit   = 25
	MaxGuestSearchLimit  = 100
	MaxMemberSearchLimit = 200
)

// GuestResult is one guest row as reported by search and host lookups.
type GuestResult struct {
	ID          int64   `json:"id"`
	DisplayName string  `json:"display_name"`
	MemberHost  *string `json:"member_host,omitempty"`
	IsCheckedIn bool    `json:"is_checked_in"`
	HasHistory  bool    `json:"has_history"`
}

// MemberResult is a per-host aggregate: how many guests the host sponsors
// and how many of them are currently present.
type MemberResult struct {
	MemberHost    string `json:"member_host"`
	TotalGuests   int64  `json:"total_guests"`
	PresentGuests int64  `json:"present_guests"`
}

// guestColumns selects a guest together with its derived presence flags.
const guestColumns = `
	g.id, g.display_name, g.member_host,
	EXISTS(SELECT 1 FROM checkins c WHERE c.guest_id = g.id AND c.out_ts IS NULL) AS is_in,
	EXISTS(SELECT 1 FROM checkins c WHERE c.guest_id = g.id) AS has_history`

// SearchGuests looks up guests by name. An empty or unusable query returns
// the alphabetical default list. Otherwise every whitespace token must match
// as a case-insensitive prefix somewhere in the display name; results are
// ranked by full-text relevance. If the prefix search yields nothing, a
// single case-insensitive substring match over the raw query is tried as a
// fallback, ordered alphabetically.
func (s *Store) SearchGuests(ctx context.Context, query string, limit int) ([]GuestResult, error) {
	lim := clampLimit(limit, MaxGuestSearchLimit)

	query = strings.TrimSpace(query)
	if query == "" {
		return s.defaultGuests(ctx, lim)
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return s.defaultGuests(ctx, lim)
	}

	// Tokens are sanitized to lowercase alphanumerics, so they are safe to
	// embed as FTS prefix terms.
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = "display_name:" + tok + "*"
	}
	match := strings.Join(terms, " AND ")

	results, err := s.queryGuests(ctx, `
		SELECT `+guestColumns+`
		FROM guest_fts f
		JOIN guests g ON g.id = f.rowid
		WHERE guest_fts MATCH ?
		ORDER BY bm25(guest_fts)
		LIMIT ?
	`, match, lim)
	if err != nil {
		return nil, fmt.Errorf("search guests: %w", err)
	}

	if len(results) == 0 {
		like := "%" + strings.ToLower(query) + "%"
		results, err = s.queryGuests(ctx, `
			SELECT `+guestColumns+`
			FROM guests g
			WHERE lower(g.display_name) LIKE ?
			ORDER BY g.display_name
			LIMIT ?
		`, like, lim)
		if err != nil {
			return nil, fmt.Errorf("search guests fallback: %w", err)
		}
	}

	return results, nil
}

// SearchMembers aggregates guests per host. Every query token must appear as
// a case-insensitive substring of the host name; tokens always bind as
// parameters, never as concatenated SQL. An empty query matches all hosts.
// Results order by present count, then total count, descending.
func (s *Store) SearchMembers(ctx context.Context, query string, limit int) ([]MemberResult, error) {
	lim := clampLimit(limit, MaxMemberSearchLimit)
	tokens := tokenize(strings.TrimSpace(query))

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
		SELECT g.member_host AS host,
			COUNT(*) AS total_guests,
			SUM(CASE WHEN EXISTS(SELECT 1 FROM checkins c WHERE c.guest_id = g.id AND c.out_ts IS NULL) THEN 1 ELSE 0 END) AS present_guests
		FROM guests g
		WHERE g.member_host IS NOT NULL AND g.member_host != ''`)
	for _, tok := range tokens {
		sb.WriteString(" AND lower(g.member_host) LIKE ?")
		args = append(args, "%"+tok+"%")
	}
	sb.WriteString(`
		GROUP BY host
		ORDER BY present_guests DESC, total_guests DESC
		LIMIT ?`)
	args = append(args, lim)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer rows.Close()

	var results []MemberResult
	for rows.Next() {
		var m MemberResult
		if err := rows.Scan(&m.MemberHost, &m.TotalGuests, &m.PresentGuests); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	if results == nil {
		results = []MemberResult{}
	}
	return results, nil
}

// GuestsForMember returns all guests of an exact (case-insensitive) host,
// ordered alphabetically. A blank host matches nothing.
func (s *Store) GuestsForMember(ctx context.Context, memberHost string) ([]GuestResult, error) {
	memberHost = strings.TrimSpace(memberHost)
	if memberHost == "" {
		return []GuestResult{}, nil
	}

	results, err := s.queryGuests(ctx, `
		SELECT `+guestColumns+`
		FROM guests g
		WHERE lower(g.member_host) = lower(?)
		ORDER BY g.display_name
	`, memberHost)
	if err != nil {
		return nil, fmt.Errorf("guests for member: %w", err)
	}
	return results, nil
}

// defaultGuests is the alphabetical listing used for empty queries.
func (s *Store) defaultGuests(ctx context.Context, limit int) ([]GuestResult, error) {
	results, err := s.queryGuests(ctx, `
		SELECT `+guestColumns+`
		FROM guests g
		ORDER BY g.display_name
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("default guest list: %w", err)
	}
	return results, nil
}

func (s *Store) queryGuests(ctx context.Context, query string, args ...any) ([]GuestResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GuestResult
	for rows.Next() {
		var (
			g    GuestResult
			host sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.DisplayName, &host, &g.IsCheckedIn, &g.HasHistory); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		g.MemberHost = strPtr(host)
		results = append(results, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if results == nil {
		results = []GuestResult{}
	}
	return results, nil
}

// tokenize splits a query on whitespace, strips each token down to its
// alphanumeric characters, lowercases it, and drops anything left empty.
func tokenize(query string) []string {
	var tokens []string
	for _, raw := range strings.Fields(query) {
		tok := cleanToken(raw)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func cleanToken(token string) string {
	var b strings.Builder
	for _, r := range token {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r >= 'A' && r <= 'Z' {
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > max {
		return max
	}
	return limit
}
