package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Event is a single check-in record. A nil OutTS means the event is still
// open and the guest is currently present.
type Event struct {
	ID      int64   `json:"id"`
	GuestID int64   `json:"guest_id"`
	InTS    string  `json:"in_ts"`
	OutTS   *string `json:"out_ts,omitempty"`
	InBy    *string `json:"in_by,omitempty"`
	OutBy   *string `json:"out_by,omitempty"`
}

// OpenEvent returns the id of the guest's open event, if one exists.
// The schema invariant allows at most one open event per guest; the most
// recent is returned if that invariant has been violated externally.
func (s *Store) OpenEvent(ctx context.Context, guestID int64) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM checkins
		WHERE guest_id = ? AND out_ts IS NULL
		ORDER BY in_ts DESC
		LIMIT 1
	`, guestID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query open event: %w", err)
	}
	return id, true, nil
}

// HasHistory reports whether the guest has any check-in events at all.
func (s *Store) HasHistory(ctx context.Context, guestID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM checkins WHERE guest_id = ? LIMIT 1
	`, guestID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query history: %w", err)
	}
	return true, nil
}

// InsertOpenEvent records a new check-in with no check-out time and returns
// the new event id.
func (s *Store) InsertOpenEvent(ctx context.Context, guestID int64, inTS string, inBy *string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO checkins (guest_id, in_ts, out_ts, in_by)
		VALUES (?, ?, NULL, ?)
	`, guestID, inTS, nullStr(inBy))
	if err != nil {
		return 0, fmt.Errorf("insert open event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert open event: last insert id: %w", err)
	}
	return id, nil
}

// InsertClosedEvent records an already-closed visit and returns the new
// event id. Used for forced check-outs and import history reconstruction.
func (s *Store) InsertClosedEvent(ctx context.Context, guestID int64, inTS, outTS string, inBy, outBy *string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO checkins (guest_id, in_ts, out_ts, in_by, out_by)
		VALUES (?, ?, ?, ?, ?)
	`, guestID, inTS, outTS, nullStr(inBy), nullStr(outBy))
	if err != nil {
		return 0, fmt.Errorf("insert closed event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert closed event: last insert id: %w", err)
	}
	return id, nil
}

// CloseEvent sets the check-out time and operator on an event.
func (s *Store) CloseEvent(ctx context.Context, id int64, outTS string, outBy *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checkins SET out_ts = ?, out_by = ? WHERE id = ?
	`, outTS, nullStr(outBy), id)
	if err != nil {
		return fmt.Errorf("close event: %w", err)
	}
	return nil
}

// ReopenEvent clears the check-out time and operator, restoring the event
// to the open state. Inverse of CloseEvent; used by undo.
func (s *Store) ReopenEvent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checkins SET out_ts = NULL, out_by = NULL WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("reopen event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by id. Used by undo to revert a check-in or
// a forced check-out.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// GuestEvents returns a guest's full history ordered by check-in time.
func (s *Store) GuestEvents(ctx context.Context, guestID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guest_id, in_ts, out_ts, in_by, out_by
		FROM checkins
		WHERE guest_id = ?
		ORDER BY in_ts ASC, id ASC
	`, guestID)
	if err != nil {
		return nil, fmt.Errorf("query guest events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev                 Event
			outTS, inBy, outBy sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.GuestID, &ev.InTS, &outTS, &inBy, &outBy); err != nil {
			return nil, fmt.Errorf("scan guest event: %w", err)
		}
		ev.OutTS = strPtr(outTS)
		ev.InBy = strPtr(inBy)
		ev.OutBy = strPtr(outBy)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guest events: %w", err)
	}

	if events == nil {
		events = []Event{}
	}
	return events, nil
}
