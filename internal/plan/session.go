package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Exercise is one renderable exercise instance within a session. ID is the
// key under which progress and overrides persist, so its format is stable:
// session name, exercise name, ordinal.
type Exercise struct {
	ID           string `json:"id"`
	Session      string `json:"session"`
	Name         string `json:"name"`
	Ordinal      int    `json:"ordinal"`
	Sets         int    `json:"sets"`
	RepsOrTime   string `json:"reps_or_time"`
	Weight       string `json:"weight"`
	Notes        string `json:"notes,omitempty"`
	FormGuidance string `json:"form_guidance,omitempty"`
	MuscleGroup  string `json:"muscle_group,omitempty"`
	MainMuscle   string `json:"main_muscle,omitempty"`
	DayType      string `json:"day_type,omitempty"`
}

// Session is an ordered group of exercises sharing one Day value.
type Session struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// BuildSessions assembles one Session per selected name, in the caller's
// order rather than alphabetical, so manual reordering controls workout
// sequencing. Rows match a session by exact Day comparison; row order
// within a session follows the source document. A name with no matching
// rows yields an empty session, which is valid.
func BuildSessions(rows []Row, selected []string) []Session {
	sessions := make([]Session, 0, len(selected))
	for _, name := range selected {
		s := Session{Name: name, Exercises: []Exercise{}}
		for _, row := range rows {
			if row.Day != name {
				continue
			}
			ord := len(s.Exercises)
			s.Exercises = append(s.Exercises, Exercise{
				ID:           ExerciseID(name, row.Exercise, ord),
				Session:      name,
				Name:         row.Exercise,
				Ordinal:      ord,
				Sets:         parseSets(row.Sets),
				RepsOrTime:   row.RepsOrTime,
				Weight:       row.Weight,
				Notes:        row.Notes,
				FormGuidance: row.FormGuidance,
				MuscleGroup:  row.MuscleGroup,
				MainMuscle:   row.MainMuscle,
				DayType:      row.DayType,
			})
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// ExerciseID builds the stable identity for one exercise instance. The
// ordinal keeps duplicate exercise names within a session distinct.
func ExerciseID(session, exercise string, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", session, exercise, ordinal)
}

// parseSets reads a set count, defaulting to 1 for anything non-numeric or
// non-positive: a session with an unparsable count must still be
// completable.
func parseSets(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
