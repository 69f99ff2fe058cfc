package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tx is a write transaction scoped to a single import run. The whole import
// commits or rolls back as a unit.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. No-op after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback import tx: %w", err)
	}
	return nil
}

// WipeGuests deletes every guest. Events go with them via the cascading
// foreign key, and the search index via the delete trigger.
func (t *Tx) WipeGuests(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM guests`); err != nil {
		return fmt.Errorf("wipe guests: %w", err)
	}
	return nil
}

// FindGuest looks up a guest by display name and host, both compared
// case-insensitively. An absent host matches only an absent host, except
// that an absent host and an empty-string host are treated as equal.
func (t *Tx) FindGuest(ctx context.Context, displayName string, memberHost *string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT id FROM guests
		WHERE lower(display_name) = lower(?)
		AND (
			(? IS NULL AND member_host IS NULL)
			OR lower(COALESCE(member_host, '')) = lower(COALESCE(?, ''))
		)
	`, displayName, nullStr(memberHost), nullStr(memberHost)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find guest: %w", err)
	}
	return id, true, nil
}

// InsertGuest creates a guest and returns its id. Callers are responsible
// for the uniqueness invariant (FindGuest first); there is no storage-level
// constraint.
func (t *Tx) InsertGuest(ctx context.Context, displayName string, memberHost *string, sourceRow *int64) (int64, error) {
	var src any
	if sourceRow != nil {
		src = *sourceRow
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO guests (display_name, member_host, source_row)
		VALUES (?, ?, ?)
	`, displayName, nullStr(memberHost), src)
	if err != nil {
		return 0, fmt.Errorf("insert guest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert guest: last insert id: %w", err)
	}
	return id, nil
}

// InsertEvent records a reconstructed visit for a newly imported guest.
// A nil outTS leaves the event open.
func (t *Tx) InsertEvent(ctx context.Context, guestID int64, inTS string, outTS *string, inBy string, outBy *string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO checkins (guest_id, in_ts, out_ts, in_by, out_by)
		VALUES (?, ?, ?, ?, ?)
	`, guestID, inTS, nullStr(outTS), inBy, nullStr(outBy))
	if err != nil {
		return fmt.Errorf("insert import event: %w", err)
	}
	return nil
}
