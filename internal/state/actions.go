package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/poferraz/motion-lite/internal/plan"
)

// The named actions below are the only public mutation surface. Each one
// enforces its invariants here, in one place, instead of at call sites, and
// returns the post-write snapshot so callers resynchronize from the store
// instead of patching local copies.

// ErrInvalidSetIndex is returned when a checked-set write addresses a
// negative set position. Callers branch on it with errors.Is to tell a bad
// request from a storage failure.
var ErrInvalidSetIndex = errors.New("set index out of range")

// SetPanel records the current panel name.
func (s *Store) SetPanel(ctx context.Context, panel string) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		snap.Panel = panel
	})
}

// SetCSVData replaces the plan payload with a fresh import and resets
// everything derived from the previous plan: selections, cursors, checked
// sets, overrides, completions, timers. Enforced here so no call site can
// swap plans while keeping stale progress.
func (s *Store) SetCSVData(ctx context.Context, csvText string, res *plan.Result) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		snap.CSVText = csvText
		snap.Rows = append([]plan.Row{}, res.Rows...)
		snap.SessionNames = append([]string{}, res.SessionNames...)
		snap.SelectedSessions = []string{}
		snap.SessionIndex = 0
		snap.ExerciseIndex = 0
		snap.CheckedSets = map[string]map[string][]bool{}
		snap.Overrides = map[string]map[string]Override{}
		snap.Completions = map[string]Completion{}
		snap.Timers = TimerState{}
		snap.CSVMeta = CSVMeta{
			ImportID:     s.newID(),
			SessionCount: len(res.SessionNames),
			UploadedAt:   s.now().UTC(),
		}
	})
}

// SetSelectedSessions stores the user's ordered session choice verbatim.
// The slice is copied; callers keep ownership of theirs.
func (s *Store) SetSelectedSessions(ctx context.Context, names []string) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		snap.SelectedSessions = append([]string{}, names...)
	})
}

// SetCursor records the current workout position.
func (s *Store) SetCursor(ctx context.Context, sessionIndex, exerciseIndex int) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		snap.SessionIndex = sessionIndex
		snap.ExerciseIndex = exerciseIndex
	})
}

// SetSetChecked flags one set of one exercise done or not, growing the
// per-exercise slice to reach the index.
func (s *Store) SetSetChecked(ctx context.Context, session, exerciseID string, setIndex int, checked bool) (*Snapshot, error) {
	if setIndex < 0 {
		return nil, fmt.Errorf("set index %d: %w", setIndex, ErrInvalidSetIndex)
	}
	return s.update(ctx, func(snap *Snapshot) {
		bySession := snap.CheckedSets[session]
		if bySession == nil {
			bySession = map[string][]bool{}
			snap.CheckedSets[session] = bySession
		}
		sets := bySession[exerciseID]
		for len(sets) <= setIndex {
			sets = append(sets, false)
		}
		sets[setIndex] = checked
		bySession[exerciseID] = sets
	})
}

// SetOverride stores user-edited template text for one exercise.
func (s *Store) SetOverride(ctx context.Context, session, exerciseID string, ov Override) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		bySession := snap.Overrides[session]
		if bySession == nil {
			bySession = map[string]Override{}
			snap.Overrides[session] = bySession
		}
		bySession[exerciseID] = ov
	})
}

// ClearOverride removes the stored override so the exercise reads from the
// plan again.
func (s *Store) ClearOverride(ctx context.Context, session, exerciseID string) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		bySession := snap.Overrides[session]
		if bySession == nil {
			return
		}
		delete(bySession, exerciseID)
		if len(bySession) == 0 {
			delete(snap.Overrides, session)
		}
	})
}

// SetSessionCompleted marks one session done with a timestamp, or removes
// the completion record when undone.
func (s *Store) SetSessionCompleted(ctx context.Context, name string, completed bool) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		if completed {
			snap.Completions[name] = Completion{CompletedAt: s.now().UTC()}
		} else {
			delete(snap.Completions, name)
		}
	})
}

// TimerUpdate carries a partial timer mutation; nil fields stay untouched.
// An explicit struct rather than a free-form merge keeps every allowed
// mutation enumerable.
type TimerUpdate struct {
	CountdownSeconds *int  `json:"countdown_seconds,omitempty"`
	CountdownRunning *bool `json:"countdown_running,omitempty"`
	StopwatchSeconds *int  `json:"stopwatch_seconds,omitempty"`
	StopwatchRunning *bool `json:"stopwatch_running,omitempty"`
}

// UpdateTimers merges the provided timer fields into the stored state.
func (s *Store) UpdateTimers(ctx context.Context, u TimerUpdate) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		if u.CountdownSeconds != nil {
			snap.Timers.CountdownSeconds = *u.CountdownSeconds
		}
		if u.CountdownRunning != nil {
			snap.Timers.CountdownRunning = *u.CountdownRunning
		}
		if u.StopwatchSeconds != nil {
			snap.Timers.StopwatchSeconds = *u.StopwatchSeconds
		}
		if u.StopwatchRunning != nil {
			snap.Timers.StopwatchRunning = *u.StopwatchRunning
		}
	})
}

// SetVersion writes the given schema version into the stored document.
// Writing anything other than the current version makes the next load
// discard the document, which is the point: it is the explicit way to
// invalidate state across an upgrade.
func (s *Store) SetVersion(ctx context.Context, version int) (*Snapshot, error) {
	return s.update(ctx, func(snap *Snapshot) {
		snap.Version = version
	})
}
