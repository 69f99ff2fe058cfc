// Package engine implements the attendance state machine.
//
// Per-guest attendance is a two-state machine: Out (no open event) and In
// (exactly one open event). Operator-invoked transitions move between the
// states, and every successful state change records an inverse action on the
// undo stack so the most recent operations can be rolled back in order.
package engine

import (
	"context"
	"fmt"

	"github.com/doorlist/doorlist/internal/clock"
	"github.com/doorlist/doorlist/internal/store"
)

// Action is an operator-requested transition.
type Action string

const (
	ActionIn  Action = "in"
	ActionOut Action = "out"
)

// ParseAction validates a raw action string.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionIn, ActionOut:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("invalid action %q (want in or out)", raw)
	}
}

// ToggleStatus reports the outcome of a toggle operation.
type ToggleStatus string

const (
	// StatusCheckedIn - a new open event was created.
	StatusCheckedIn ToggleStatus = "checked_in"
	// StatusCheckedOut - the open event was closed, or a forced check-out
	// fabricated an instantaneous visit.
	StatusCheckedOut ToggleStatus = "checked_out"
	// StatusAlreadyIn - check-in on a guest who is already In; no mutation.
	StatusAlreadyIn ToggleStatus = "already_in"
	// StatusNotCheckedIn - check-out on an Out guest with prior history.
	StatusNotCheckedIn ToggleStatus = "not_checked_in"
	// StatusNeverCheckedIn - check-out on an Out guest with no history.
	StatusNeverCheckedIn ToggleStatus = "never_checked_in"
)

// UndoStatus reports the outcome of an undo operation.
type UndoStatus string

const (
	UndoRevertedCheckIn  UndoStatus = "reverted_check_in"
	UndoRevertedCheckOut UndoStatus = "reverted_check_out"
	UndoEmpty            UndoStatus = "empty"
)

// Engine drives the attendance state machine against the store.
type Engine struct {
	store *store.Store
	clock clock.Clock
	undo  *UndoStack
}

// New creates an engine. The undo stack is owned by the caller so its
// lifetime can be tied to an operator session.
func New(st *store.Store, clk clock.Clock, undo *UndoStack) *Engine {
	return &Engine{store: st, clock: clk, undo: undo}
}

// Undo exposes the engine's undo stack.
func (e *Engine) Undo() *UndoStack {
	return e.undo
}

// Toggle dispatches a check-in or check-out for the guest and, when the
// operation changed state, silently pushes its inverse onto the undo stack.
// The operator attribution may be empty; force only applies to check-out.
func (e *Engine) Toggle(ctx context.Context, guestID int64, action Action, operator string, force bool) (ToggleStatus, error) {
	switch action {
	case ActionIn:
		return e.checkIn(ctx, guestID, operator)
	case ActionOut:
		return e.checkOut(ctx, guestID, operator, force)
	default:
		return "", fmt.Errorf("invalid action %q", action)
	}
}

func (e *Engine) checkIn(ctx context.Context, guestID int64, operator string) (ToggleStatus, error) {
	if _, open, err := e.store.OpenEvent(ctx, guestID); err != nil {
		return "", fmt.Errorf("check in: %w", err)
	} else if open {
		return StatusAlreadyIn, nil
	}

	now := clock.Stamp(e.clock.Now())
	id, err := e.store.InsertOpenEvent(ctx, guestID, now, optional(operator))
	if err != nil {
		return "", fmt.Errorf("check in: %w", err)
	}

	e.undo.Push(UndoAction{Kind: UndoCheckIn, EventID: id})
	return StatusCheckedIn, nil
}

func (e *Engine) checkOut(ctx context.Context, guestID int64, operator string, force bool) (ToggleStatus, error) {
	eventID, open, err := e.store.OpenEvent(ctx, guestID)
	if err != nil {
		return "", fmt.Errorf("check out: %w", err)
	}

	if !open {
		if force {
			// Fabricate an instantaneous visit so the log shows the guest
			// was here even though no check-in was recorded.
			now := clock.Stamp(e.clock.Now())
			id, err := e.store.InsertClosedEvent(ctx, guestID, now, now, optional(operator), optional(operator))
			if err != nil {
				return "", fmt.Errorf("forced check out: %w", err)
			}
			e.undo.Push(UndoAction{Kind: UndoForcedCheckOut, EventID: id})
			return StatusCheckedOut, nil
		}

		hasHistory, err := e.store.HasHistory(ctx, guestID)
		if err != nil {
			return "", fmt.Errorf("check out: %w", err)
		}
		if hasHistory {
			return StatusNotCheckedIn, nil
		}
		return StatusNeverCheckedIn, nil
	}

	now := clock.Stamp(e.clock.Now())
	if err := e.store.CloseEvent(ctx, eventID, now, optional(operator)); err != nil {
		return "", fmt.Errorf("check out: %w", err)
	}

	e.undo.Push(UndoAction{Kind: UndoCheckOut, EventID: eventID})
	return StatusCheckedOut, nil
}

// UndoLast pops the most recent undo action and applies its inverse.
// An empty stack reports UndoEmpty with no effect. If applying the inverse
// fails, the action is pushed back so no undo entry is silently lost.
func (e *Engine) UndoLast(ctx context.Context) (UndoStatus, error) {
	action, ok := e.undo.Pop()
	if !ok {
		return UndoEmpty, nil
	}

	if err := e.applyInverse(ctx, action); err != nil {
		e.undo.Push(action)
		return "", fmt.Errorf("undo %s: %w", action.Kind, err)
	}

	if action.Kind == UndoCheckIn {
		return UndoRevertedCheckIn, nil
	}
	return UndoRevertedCheckOut, nil
}

func (e *Engine) applyInverse(ctx context.Context, action UndoAction) error {
	switch action.Kind {
	case UndoCheckIn, UndoForcedCheckOut:
		return e.store.DeleteEvent(ctx, action.EventID)
	case UndoCheckOut:
		return e.store.ReopenEvent(ctx, action.EventID)
	default:
		return fmt.Errorf("unknown undo action kind %v", action.Kind)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
