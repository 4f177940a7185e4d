package core

import "strings"

func init() {
	Register(Codec{
		Format:      FormatMarkdown,
		Aliases:     []string{"md"},
		Label:       "Markdown table",
		ContentType: "text/markdown; charset=utf-8",
		Extension:   ".md",
		Parse:       parseMarkdown,
		Serialize:   serializeMarkdown,
	})
}

// parseMarkdown reads a pipe table: header row, separator row, data rows.
// Data rows whose cell count differs from the header are dropped.
func parseMarkdown(data string, _ Options) (*Table, error) {
	lines := nonBlankLines(decodeText(data))
	if len(lines) < 3 {
		return nil, malformed(FormatMarkdown, "a table needs a header row, a separator row and at least one data row", nil)
	}

	t := NewTable(splitMarkdownRow(lines[0]))
	dropped := 0
	for _, line := range lines[2:] {
		cells := splitMarkdownRow(line)
		if len(cells) != len(t.Headers) {
			dropped++
			continue
		}
		t.AddRecord(cells)
	}
	if dropped > 0 {
		t.warn("markdown: dropped rows whose cell count does not match the header")
	}
	return t, nil
}

// splitMarkdownRow splits on unescaped pipes and unescapes "\|".
func splitMarkdownRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var (
		cells []string
		cell  strings.Builder
	)
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cell.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(line[i])
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}

var markdownEscaper = strings.NewReplacer(`|`, `\|`, "\r\n", " ", "\n", " ", "\r", "")

// serializeMarkdown writes a GitHub-style pipe table.
func serializeMarkdown(t *Table, _ Options) (string, error) {
	if len(t.Headers) == 0 {
		return "", nil
	}

	var b strings.Builder
	writeMarkdownRow(&b, t.Headers)
	b.WriteString("|")
	for range t.Headers {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')
	for i := range t.Rows {
		writeMarkdownRow(&b, t.Record(i))
	}
	return b.String(), nil
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" " + markdownEscaper.Replace(c) + " |")
	}
	b.WriteByte('\n')
}
