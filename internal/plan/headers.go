package plan

import (
	"regexp"
	"strings"
)

// Field names one canonical plan column. The string value is the display
// name used in diagnostics and exported headers.
type Field string

const (
	FieldDay          Field = "Day"
	FieldExercise     Field = "Exercise"
	FieldSets         Field = "Sets"
	FieldRepsOrTime   Field = "Reps or Time"
	FieldWeight       Field = "Weight"
	FieldNotes        Field = "Notes"
	FieldFormGuidance Field = "Form Guidance"
	FieldMuscleGroup  Field = "Muscle Group"
	FieldMainMuscle   Field = "Main Muscle"
	FieldDayType      Field = "Day Type"
)

type fieldSpec struct {
	field    Field
	aliases  []string
	required bool
}

// fieldSpecs declares every canonical column with its accepted header
// spellings, already in normalized form. Alias order matters: the first
// alias found anywhere in the header row wins, so a "Duration" column beats
// a "Reps" column for Reps or Time even when Reps appears first.
var fieldSpecs = []fieldSpec{
	{FieldDay, []string{"day", "date"}, true},
	{FieldExercise, []string{"exercise", "workout", "name"}, true},
	{FieldSets, []string{"sets", "set"}, true},
	{FieldRepsOrTime, []string{"reps or time", "reps/time", "reps time", "time", "duration", "reps"}, true},
	{FieldWeight, []string{"weight", "load", "kg", "lbs"}, true},
	{FieldNotes, []string{"notes", "note", "comments"}, false},
	{FieldFormGuidance, []string{"form guidance", "form", "guidance", "cues", "form cues"}, false},
	{FieldMuscleGroup, []string{"muscle group", "muscle groups", "group"}, false},
	{FieldMainMuscle, []string{"main muscle", "primary muscle", "target"}, false},
	{FieldDayType, []string{"day type", "type"}, false},
}

var (
	spaceRunRe     = regexp.MustCompile(`\s+`)
	headerReplacer = strings.NewReplacer("-", " ", "_", " ", ":", "")
)

// normalizeHeader canonicalizes one header cell for alias matching: strips a
// leading byte-order mark, converts dashes and underscores to spaces, drops
// colons, collapses whitespace runs, trims, lowercases.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = headerReplacer.Replace(s)
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

// resolveHeaders maps each canonical field to the column index its first
// matching alias was found at, or -1. Alias declaration order outranks
// column order; duplicate header cells get no special handling. Missing
// required fields come back in declaration order.
func resolveHeaders(cells []string) (indexes map[Field]int, missing []Field) {
	norm := make([]string, len(cells))
	for i, c := range cells {
		norm[i] = normalizeHeader(c)
	}

	indexes = make(map[Field]int, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		indexes[spec.field] = -1
	search:
		for _, alias := range spec.aliases {
			for i, cell := range norm {
				if cell == alias {
					indexes[spec.field] = i
					break search
				}
			}
		}
		if spec.required && indexes[spec.field] < 0 {
			missing = append(missing, spec.field)
		}
	}
	return indexes, missing
}
