package engine

import "sync"

// UndoKind tags the original operation an undo action reverts.
//
// UndoCheckIn and UndoForcedCheckOut share the same inverse (delete the
// event by id) but stay distinct: one removes a still-open event, the other
// a synthetic closed one, and the distinction matters for reporting.
type UndoKind string

const (
	UndoCheckIn        UndoKind = "check_in"
	UndoCheckOut       UndoKind = "check_out"
	UndoForcedCheckOut UndoKind = "forced_check_out"
)

// UndoAction names exactly which event to mutate and how.
type UndoAction struct {
	Kind    UndoKind
	EventID int64
}

// UndoStack is a LIFO log of inverse actions for one operator session.
//
// The stack is the only shared mutable state across concurrent operations;
// a single mutex guards every push and pop so no caller can observe a
// partially mutated stack. It is never persisted - it resets with the
// process.
type UndoStack struct {
	mu       sync.Mutex
	actions  []UndoAction
	capacity int
}

// NewUndoStack creates a stack. capacity 0 means unbounded (the default for
// interactive sessions); a bounded stack drops its oldest action when full.
func NewUndoStack(capacity int) *UndoStack {
	return &UndoStack{capacity: capacity}
}

// Push appends an action.
func (u *UndoStack) Push(action UndoAction) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.capacity > 0 && len(u.actions) >= u.capacity {
		u.actions = append(u.actions[1:], action)
		return
	}
	u.actions = append(u.actions, action)
}

// Pop removes and returns the most recent action.
func (u *UndoStack) Pop() (UndoAction, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.actions) == 0 {
		return UndoAction{}, false
	}
	last := len(u.actions) - 1
	action := u.actions[last]
	u.actions = u.actions[:last]
	return action, true
}

// Len reports the number of recorded actions.
func (u *UndoStack) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.actions)
}
