package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/doorlist/doorlist/internal/clock"
	"github.com/doorlist/doorlist/internal/store"
)

// importOperator is the attribution recorded on reconstructed history.
const importOperator = "import"

// Mode controls whether an import merges into or replaces existing data.
type Mode string

const (
	// ModeReplace clears all existing guests (and their events) first.
	ModeReplace Mode = "replace"
	// ModeAppend merges new rows into existing data.
	ModeAppend Mode = "append"
)

// ParseMode validates a raw mode string.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(raw)) {
	case ModeReplace, ModeAppend:
		return Mode(strings.ToLower(raw)), nil
	default:
		return "", fmt.Errorf("invalid import mode %q (want replace or append)", raw)
	}
}

// Summary reports the outcome of an import run. Inserted counts net-new
// guests; TotalRows counts input rows regardless of how many names each
// expanded to.
type Summary struct {
	Inserted  int `json:"inserted"`
	TotalRows int `json:"total_rows"`
}

// Importer runs the import pipeline against the store.
type Importer struct {
	store *store.Store
	clock clock.Clock
}

// NewImporter creates an importer. Timestamps parse into the clock's zone.
func NewImporter(st *store.Store, clk clock.Clock) *Importer {
	return &Importer{store: st, clock: clk}
}

// Run imports the rows inside a single transaction: either every row lands
// or none do. Existing guests (matched case-insensitively on name+host) are
// skipped untouched; each newly inserted guest gets at most one
// reconstructed visit.
func (imp *Importer) Run(ctx context.Context, rows []Row, mode Mode) (Summary, error) {
	loc := imp.clock.Now().Location()

	tx, err := imp.store.Begin(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("import: %w", err)
	}
	defer tx.Rollback()

	if mode == ModeReplace {
		if err := tx.WipeGuests(ctx); err != nil {
			return Summary{}, fmt.Errorf("import: %w", err)
		}
	}

	inserted := 0
	for _, row := range rows {
		parsed := ParseRow(row, loc)
		host := optionalHost(parsed.Host)

		for _, name := range parsed.Guests {
			if _, exists, err := tx.FindGuest(ctx, name, host); err != nil {
				return Summary{}, fmt.Errorf("import: %w", err)
			} else if exists {
				continue
			}

			guestID, err := tx.InsertGuest(ctx, name, host, parsed.SourceRow)
			if err != nil {
				return Summary{}, fmt.Errorf("import: %w", err)
			}
			inserted++

			if err := imp.insertHistory(ctx, tx, guestID, parsed); err != nil {
				return Summary{}, fmt.Errorf("import: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("import: %w", err)
	}

	return Summary{Inserted: inserted, TotalRows: len(rows)}, nil
}

func (imp *Importer) insertHistory(ctx context.Context, tx *store.Tx, guestID int64, parsed ParsedRow) error {
	now := func() string { return clock.Stamp(imp.clock.Now()) }
	inTS, outTS, ok := parsed.history(now)
	if !ok {
		return nil
	}

	var outBy *string
	if outTS != nil {
		by := importOperator
		outBy = &by
	}
	return tx.InsertEvent(ctx, guestID, inTS, outTS, importOperator, outBy)
}

func optionalHost(host string) *string {
	if host == "" {
		return nil
	}
	return &host
}
