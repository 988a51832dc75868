package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/poferraz/motion-lite/internal/plan"
)

// SchemaVersion tags every persisted snapshot. A stored document carrying a
// different version is discarded wholesale and replaced with defaults;
// there is no field-level migration.
const SchemaVersion = 1

// StorageKey is the fixed identifier the single snapshot document lives
// under in every backend.
const StorageKey = "motionlite.state"

// Panel names persisted with the snapshot. The UI owns navigation; these
// are just the values a fresh install cycles through.
const (
	PanelUpload   = "upload"
	PanelSessions = "sessions"
	PanelWorkout  = "workout"
)

// Snapshot is the single persisted application document. In-memory UI state
// is a disposable cache of it, resynchronized on load and after every
// mutation; the store is the source of truth.
type Snapshot struct {
	Version          int                            `json:"version"`
	Panel            string                         `json:"panel"`
	CSVText          string                         `json:"csv_text"`
	Rows             []plan.Row                     `json:"rows"`
	SessionNames     []string                       `json:"session_names"`
	SelectedSessions []string                       `json:"selected_sessions"`
	SessionIndex     int                            `json:"session_index"`
	ExerciseIndex    int                            `json:"exercise_index"`
	CheckedSets      map[string]map[string][]bool   `json:"checked_sets"`
	Overrides        map[string]map[string]Override `json:"overrides"`
	Timers           TimerState                     `json:"timers"`
	CSVMeta          CSVMeta                        `json:"csv_meta"`
	Completions      map[string]Completion          `json:"completions"`
}

// Override carries user-edited template text for one exercise, keyed under
// its session and exercise id. Values are display text exactly as typed,
// not parsed numbers.
type Override struct {
	Sets   string `json:"sets,omitempty"`
	Reps   string `json:"reps,omitempty"`
	Weight string `json:"weight,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Form   string `json:"form,omitempty"`
}

// TimerState holds the workout countdown and stopwatch.
type TimerState struct {
	CountdownSeconds int  `json:"countdown_seconds"`
	CountdownRunning bool `json:"countdown_running"`
	StopwatchSeconds int  `json:"stopwatch_seconds"`
	StopwatchRunning bool `json:"stopwatch_running"`
}

// CSVMeta describes the most recent import. Zero values mean no plan has
// been imported yet.
type CSVMeta struct {
	ImportID     uuid.UUID `json:"import_id"`
	SessionCount int       `json:"session_count"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Completion records one session marked done. Presence in the completions
// map is the flag; unmarking removes the record.
type Completion struct {
	CompletedAt time.Time `json:"completed_at"`
}

// DefaultSnapshot returns the document a fresh install starts from: current
// schema version, upload panel, every collection empty but non-nil.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Version:          SchemaVersion,
		Panel:            PanelUpload,
		Rows:             []plan.Row{},
		SessionNames:     []string{},
		SelectedSessions: []string{},
		CheckedSets:      map[string]map[string][]bool{},
		Overrides:        map[string]map[string]Override{},
		Completions:      map[string]Completion{},
	}
}

// normalize backfills nil collections after JSON decoding, so a
// same-version document written before a field existed still satisfies the
// non-nil contract every consumer relies on.
func (s *Snapshot) normalize() {
	if s.Rows == nil {
		s.Rows = []plan.Row{}
	}
	if s.SessionNames == nil {
		s.SessionNames = []string{}
	}
	if s.SelectedSessions == nil {
		s.SelectedSessions = []string{}
	}
	if s.CheckedSets == nil {
		s.CheckedSets = map[string]map[string][]bool{}
	}
	if s.Overrides == nil {
		s.Overrides = map[string]map[string]Override{}
	}
	if s.Completions == nil {
		s.Completions = map[string]Completion{}
	}
}
