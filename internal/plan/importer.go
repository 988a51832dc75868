package plan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row is one logical record from an imported plan document, keyed by
// canonical field. Values are the cell text verbatim; unresolved optional
// columns and short rows read as empty strings, never as nulls.
type Row struct {
	Day          string `json:"day"`
	Exercise     string `json:"exercise"`
	Sets         string `json:"sets"`
	RepsOrTime   string `json:"reps_or_time"`
	Weight       string `json:"weight"`
	Notes        string `json:"notes,omitempty"`
	FormGuidance string `json:"form_guidance,omitempty"`
	MuscleGroup  string `json:"muscle_group,omitempty"`
	MainMuscle   string `json:"main_muscle,omitempty"`
	DayType      string `json:"day_type,omitempty"`
}

// Value returns the cell stored under the given canonical field.
func (r Row) Value(f Field) string {
	switch f {
	case FieldDay:
		return r.Day
	case FieldExercise:
		return r.Exercise
	case FieldSets:
		return r.Sets
	case FieldRepsOrTime:
		return r.RepsOrTime
	case FieldWeight:
		return r.Weight
	case FieldNotes:
		return r.Notes
	case FieldFormGuidance:
		return r.FormGuidance
	case FieldMuscleGroup:
		return r.MuscleGroup
	case FieldMainMuscle:
		return r.MainMuscle
	case FieldDayType:
		return r.DayType
	}
	return ""
}

// Diagnostic is one problem found during import. Line is the 1-based source
// line counting the header, so the first data line is 2; zero marks a
// document-level problem.
type Diagnostic struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("Row %d: %s", d.Line, d.Message)
	}
	return d.Message
}

// Result is the outcome of one import pass. A document-level failure leaves
// Rows and SessionNames empty with exactly one diagnostic; row-level
// problems accumulate as warnings while the rows stay admitted.
type Result struct {
	Rows         []Row        `json:"rows"`
	SessionNames []string     `json:"session_names"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
}

// OK reports whether the document itself imported, i.e. no document-level
// diagnostic. Row warnings do not affect it.
func (r *Result) OK() bool {
	for _, d := range r.Diagnostics {
		if d.Line == 0 {
			return false
		}
	}
	return true
}

// Parse imports a whole plan document. It is total over its input: any text
// yields a Result, never an error. The only document-level failures are
// fewer than two lines and unresolved required headers; every other
// malformed shape degrades to row warnings with the rows kept.
func Parse(text string) *Result {
	res := &Result{Rows: []Row{}, SessionNames: []string{}}

	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Message: "file needs a header row and at least one data row",
		})
		return res
	}

	// Delimiter detection looks at the header line only: tab wins, else comma.
	delim := byte(',')
	if strings.IndexByte(lines[0], '\t') >= 0 {
		delim = '\t'
	}

	header := SplitLine(lines[0], delim)
	indexes, missing := resolveHeaders(header)
	if len(missing) > 0 {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Message: missingHeaderMessage(missing, header),
		})
		return res
	}

	seen := make(map[string]bool)
	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := SplitLine(line, delim)
		row := Row{
			Day:          cellAt(cells, indexes[FieldDay]),
			Exercise:     cellAt(cells, indexes[FieldExercise]),
			Sets:         cellAt(cells, indexes[FieldSets]),
			RepsOrTime:   cellAt(cells, indexes[FieldRepsOrTime]),
			Weight:       cellAt(cells, indexes[FieldWeight]),
			Notes:        cellAt(cells, indexes[FieldNotes]),
			FormGuidance: cellAt(cells, indexes[FieldFormGuidance]),
			MuscleGroup:  cellAt(cells, indexes[FieldMuscleGroup]),
			MainMuscle:   cellAt(cells, indexes[FieldMainMuscle]),
			DayType:      cellAt(cells, indexes[FieldDayType]),
		}

		// No day and no exercise = blank logical line, not data
		if row.Day == "" && row.Exercise == "" {
			continue
		}

		if empty := missingRequired(row); len(empty) > 0 {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Line:    n + 2, // 1-based, counting the header line
				Message: "missing " + joinFields(empty),
			})
		}

		res.Rows = append(res.Rows, row)
		if row.Day != "" {
			seen[row.Day] = true
		}
	}

	res.SessionNames = make([]string, 0, len(seen))
	for name := range seen {
		res.SessionNames = append(res.SessionNames, name)
	}
	sort.Strings(res.SessionNames)

	return res
}

// cellAt reads a tokenized cell by resolved column index. Unresolved
// columns (-1) and short rows read as empty, never out of range.
func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// missingRequired lists the required fields holding an empty value, in
// declaration order.
func missingRequired(row Row) []Field {
	var empty []Field
	for _, spec := range fieldSpecs {
		if spec.required && row.Value(spec.field) == "" {
			empty = append(empty, spec.field)
		}
	}
	return empty
}

// missingHeaderMessage names the unresolved required columns and echoes the
// header cells actually found, so the user can fix their file.
func missingHeaderMessage(missing []Field, header []string) string {
	quoted := make([]string, len(header))
	for i, h := range header {
		quoted[i] = strconv.Quote(h)
	}
	return fmt.Sprintf("missing required columns: %s (found headers: %s)",
		joinFields(missing), strings.Join(quoted, ", "))
}

func joinFields(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
