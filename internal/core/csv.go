package core

import (
	"encoding/csv"
	"strings"
)

func init() {
	Register(Codec{
		Format:      FormatCSV,
		Label:       "CSV",
		ContentType: "text/csv; charset=utf-8",
		Extension:   ".csv",
		Parse:       func(data string, _ Options) (*Table, error) { return ParseCSV(data) },
		Serialize: func(t *Table, _ Options) (string, error) {
			return WriteCSV(t, t.Headers), nil
		},
	})
}

// ParseCSV reads RFC 4180 style CSV. The first record is the header; later
// records are mapped to it positionally. Blank input yields an empty table.
func ParseCSV(data string) (*Table, error) {
	data = decodeText(data)
	if strings.TrimSpace(data) == "" {
		return &Table{}, nil
	}

	records, err := readDelimited(data, ',', false)
	if err != nil {
		return nil, malformed(FormatCSV, "", err)
	}
	return tableFromRecords(records), nil
}

func readDelimited(data string, comma rune, lazy bool) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy
	return r.ReadAll()
}

func tableFromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}
	t := NewTable(records[0])
	for _, rec := range records[1:] {
		t.AddRecord(rec)
	}
	return t
}

// WriteCSV renders t using the given headers. A field is quoted when it
// contains a comma, a double quote or a line break; embedded quotes are
// doubled. Lines are joined with \n without a trailing newline. A table
// without rows renders as the empty string.
func WriteCSV(t *Table, headers []string) string {
	if len(t.Rows) == 0 || len(headers) == 0 {
		return ""
	}

	var b strings.Builder
	writeCSVRecord(&b, headers)
	for _, row := range t.Rows {
		b.WriteByte('\n')
		writeCSVRecord(&b, recordFor(row, headers))
	}
	return b.String()
}

func writeCSVRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		if !strings.ContainsAny(f, ",\"\r\n") {
			b.WriteString(f)
			continue
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
