package statement

import "strings"

// SplitLine splits a statement line into fields, auto-detecting the
// delimiter. Tab wins only when the line has at least as many tabs as commas
// and at least one tab; otherwise comma. Lines containing a quote character
// are parsed with CSV quoting rules so that a field like "36,000.00" stays a
// single field.
func SplitLine(line string) []string {
	delim := detectDelimiter(line)
	if strings.ContainsRune(line, '"') {
		return splitQuoted(line, delim)
	}

	fields := strings.Split(line, string(delim))
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func detectDelimiter(line string) rune {
	tabs := strings.Count(line, "\t")
	commas := strings.Count(line, ",")
	if tabs > 0 && tabs >= commas {
		return '\t'
	}
	return ','
}

// splitQuoted parses one line with CSV quoting rules: a quote toggles
// in-field state, a doubled quote inside a quoted field is a literal quote,
// and the delimiter is literal while quoted.
func splitQuoted(line string, delim rune) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}
