// Package service is the application facade: it owns the store and wires
// the check-in engine, roster importer, and exporter behind one API with
// structured logging. The CLI talks only to this package.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/doorlist/doorlist/internal/clock"
	"github.com/doorlist/doorlist/internal/engine"
	"github.com/doorlist/doorlist/internal/export"
	"github.com/doorlist/doorlist/internal/roster"
	"github.com/doorlist/doorlist/internal/store"
)

// Options tunes service construction. Zero values give the production
// defaults: a system clock, an unbounded undo stack, and a no-op logger.
type Options struct {
	Clock        clock.Clock
	UndoCapacity int
	Logger       *zerolog.Logger
}

// Service exposes every attendance operation.
type Service struct {
	store    *store.Store
	engine   *engine.Engine
	importer *roster.Importer
	exporter *export.Exporter
	log      zerolog.Logger
}

// Open opens (creating if needed) the database at dbPath and builds the
// service around it. Timestamps are rendered in loc.
func Open(dbPath string, loc *time.Location, opts Options) (*Service, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open service: %w", err)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystem(loc)
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Service{
		store:    st,
		engine:   engine.New(st, clk, engine.NewUndoStack(opts.UndoCapacity)),
		importer: roster.NewImporter(st, clk),
		exporter: export.New(st, clk),
		log:      log.With().Str("component", "doorlist").Logger(),
	}, nil
}

// Close releases the underlying database.
func (s *Service) Close() error {
	return s.store.Close()
}

// Toggle flips a guest's presence. See engine.Engine.Toggle for the status
// semantics.
func (s *Service) Toggle(ctx context.Context, guestID int64, action engine.Action, operator string, force bool) (engine.ToggleStatus, error) {
	log := s.opLog("toggle")
	status, err := s.engine.Toggle(ctx, guestID, action, operator, force)
	if err != nil {
		log.Error().Err(err).Int64("guest_id", guestID).Msg("toggle failed")
		return status, err
	}
	log.Info().
		Int64("guest_id", guestID).
		Str("action", string(action)).
		Str("status", string(status)).
		Bool("force", force).
		Msg("toggled")
	return status, nil
}

// Undo reverts the most recent toggle.
func (s *Service) Undo(ctx context.Context) (engine.UndoStatus, error) {
	log := s.opLog("undo")
	status, err := s.engine.UndoLast(ctx)
	if err != nil {
		log.Error().Err(err).Msg("undo failed")
		return status, err
	}
	log.Info().Str("status", string(status)).Msg("undone")
	return status, nil
}

// Import merges or replaces the roster with the given rows.
func (s *Service) Import(ctx context.Context, rows []roster.Row, mode roster.Mode) (roster.Summary, error) {
	log := s.opLog("import")
	summary, err := s.importer.Run(ctx, rows, mode)
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		return summary, err
	}
	log.Info().
		Str("mode", string(mode)).
		Int("rows", summary.TotalRows).
		Int("inserted", summary.Inserted).
		Msg("imported")
	return summary, nil
}

// ImportFile reads a roster CSV from disk and imports it.
func (s *Service) ImportFile(ctx context.Context, path string, mode roster.Mode) (roster.Summary, error) {
	rows, err := roster.ReadFile(path)
	if err != nil {
		return roster.Summary{}, err
	}
	return s.Import(ctx, rows, mode)
}

// SearchGuests finds guests by name prefix, falling back to substring
// matching. An empty query lists guests alphabetically.
func (s *Service) SearchGuests(ctx context.Context, query string, limit int) ([]store.GuestResult, error) {
	return s.store.SearchGuests(ctx, query, limit)
}

// SearchMembers aggregates guest counts per member host.
func (s *Service) SearchMembers(ctx context.Context, query string, limit int) ([]store.MemberResult, error) {
	return s.store.SearchMembers(ctx, query, limit)
}

// GuestsForMember lists the guests hosted by an exact member name.
func (s *Service) GuestsForMember(ctx context.Context, memberHost string) ([]store.GuestResult, error) {
	return s.store.GuestsForMember(ctx, memberHost)
}

// Stats returns the live attendance snapshot.
func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	return s.store.Snapshot(ctx)
}

// Export writes the attendance snapshot CSV and returns its path. An empty
// outDir means the user's desktop.
func (s *Service) Export(ctx context.Context, outDir string) (string, error) {
	log := s.opLog("export")
	path, err := s.exporter.Snapshot(ctx, outDir)
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		return "", err
	}
	log.Info().Str("path", path).Msg("exported")
	return path, nil
}

// opLog tags every log line from one operation with a shared id.
func (s *Service) opLog(op string) zerolog.Logger {
	return s.log.With().Str("op", op).Str("op_id", uuid.NewString()).Logger()
}
