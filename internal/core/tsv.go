package core

import "strings"

func init() {
	Register(Codec{
		Format:      FormatTSV,
		Label:       "TSV",
		ContentType: "text/tab-separated-values; charset=utf-8",
		Extension:   ".tsv",
		Parse:       parseTSV,
		Serialize:   serializeTSV,
	})
}

// parseTSV splits each non-blank line on tabs. No quoting is recognized.
func parseTSV(data string, _ Options) (*Table, error) {
	var t *Table
	for _, line := range splitLines(decodeText(data)) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if t == nil {
			t = NewTable(cells)
			continue
		}
		t.AddRecord(cells)
	}
	if t == nil {
		return &Table{}, nil
	}
	return t, nil
}

// serializeTSV joins cells with tabs. Cells are written verbatim: a tab or
// line break inside a value is not escaped and will split the cell on a
// later parse.
func serializeTSV(t *Table, _ Options) (string, error) {
	if len(t.Headers) == 0 {
		return "", nil
	}
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Headers, "\t"))
	for i := range t.Rows {
		lines = append(lines, strings.Join(t.Record(i), "\t"))
	}
	return strings.Join(lines, "\n"), nil
}
