package core

import (
	"strings"
	"unicode/utf8"
)

func init() {
	Register(Codec{
		Format:      FormatTXT,
		Aliases:     []string{"text"},
		Label:       "Plain-text table",
		ContentType: "text/plain; charset=utf-8",
		Extension:   ".txt",
		Parse:       parseTXT,
		Serialize:   serializeTXT,
	})
}

// parseTXT reads a header line, an optional divider line, then data lines.
// The delimiter is sniffed from the header: tab, then comma, then pipe.
func parseTXT(data string, _ Options) (*Table, error) {
	lines := nonBlankLines(decodeText(data))
	if len(lines) < 2 {
		return &Table{}, nil
	}

	delim := sniffTXTDelimiter(lines[0])
	t := NewTable(splitTXT(lines[0], delim))
	for _, line := range lines[1:] {
		if isDividerLine(line) {
			continue
		}
		t.AddRecord(splitTXT(line, delim))
	}
	return t, nil
}

func sniffTXTDelimiter(header string) string {
	switch {
	case strings.Contains(header, "\t"):
		return "\t"
	case strings.Contains(header, ","):
		return ","
	default:
		return "|"
	}
}

// splitTXT splits a line on delim. Pipe-separated lines honour \| escapes,
// as written by serializeTXT.
func splitTXT(line, delim string) []string {
	if delim == "|" {
		return splitMarkdownRow(line)
	}
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// isDividerLine reports lines like "---+---" or "|:---|---:|".
func isDividerLine(line string) bool {
	hasDash := false
	for _, r := range line {
		switch r {
		case '-', '=':
			hasDash = true
		case '+', '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return hasDash
}

// serializeTXT pads every column to its widest cell, separates columns with
// " | " and puts a dashed divider under the header. A "|" inside a cell is
// written as "\|"; runs of whitespace collapse to one space.
func serializeTXT(t *Table, _ Options) (string, error) {
	if len(t.Headers) == 0 {
		return "", nil
	}

	headers := make([]string, len(t.Headers))
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = txtCell(h)
		widths[i] = utf8.RuneCountInString(headers[i])
	}
	records := make([][]string, len(t.Rows))
	for i := range t.Rows {
		records[i] = t.Record(i)
		for j, v := range records[i] {
			records[i][j] = txtCell(v)
			widths[j] = max(widths[j], utf8.RuneCountInString(records[i][j]))
		}
	}

	var b strings.Builder
	writeTXTLine(&b, headers, widths)
	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", max(w, 1))
	}
	b.WriteString(strings.Join(dashes, "-+-"))
	b.WriteByte('\n')
	for _, rec := range records {
		writeTXTLine(&b, rec, widths)
	}
	return b.String(), nil
}

func txtCell(v string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(v), " "), "|", `\|`)
}

func writeTXTLine(b *strings.Builder, cells []string, widths []int) {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c)))
		}
	}
	b.WriteByte('\n')
}
