package plan

import "strings"

// EncodeLine joins fields with the delimiter, wrapping any field containing
// the delimiter, a quote, or a line break in double quotes and doubling
// internal quotes. SplitLine(EncodeLine(fields, d), d) returns the original
// fields.
func EncodeLine(fields []string, delim byte) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(delim)
		}
		if strings.ContainsAny(f, string(delim)+"\"\n\r") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(f)
		}
	}
	return b.String()
}

// EncodeDocument renders rows back to comma-delimited text: the canonical
// header first, then one line per row. Required columns always appear;
// an optional column appears when at least one row has a value for it.
func EncodeDocument(rows []Row) string {
	var cols []Field
	for _, spec := range fieldSpecs {
		if spec.required || anyValue(rows, spec.field) {
			cols = append(cols, spec.field)
		}
	}

	header := make([]string, len(cols))
	for i, f := range cols {
		header[i] = string(f)
	}

	var b strings.Builder
	b.WriteString(EncodeLine(header, ','))
	b.WriteByte('\n')
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, f := range cols {
			cells[i] = row.Value(f)
		}
		b.WriteString(EncodeLine(cells, ','))
		b.WriteByte('\n')
	}
	return b.String()
}

func anyValue(rows []Row, f Field) bool {
	for _, row := range rows {
		if row.Value(f) != "" {
			return true
		}
	}
	return false
}
