package plan

import "strings"

// SplitLine splits one line of a plan document into fields for the given
// delimiter, honoring double-quote quoting: inside quotes the delimiter is
// literal and a doubled quote ("") decodes to one literal quote. A bare
// carriage return outside quotes is dropped, so CRLF input tokenizes the
// same as LF input. The result always has at least one field, and malformed
// quoting never fails: end of line closes whatever accumulated.
func SplitLine(line string, delim byte) []string {
	fields := make([]string, 0, 8)
	var b strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				// Escaped quote
				b.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == delim && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		case ch == '\r' && !inQuotes:
			// Dropped: CRLF endings behave like LF
		default:
			b.WriteByte(ch)
		}
	}
	fields = append(fields, b.String())
	return fields
}
