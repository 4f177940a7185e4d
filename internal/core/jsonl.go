package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

func init() {
	Register(Codec{
		Format:      FormatJSONL,
		Aliases:     []string{"ndjson", "lines"},
		Label:       "JSON Lines",
		ContentType: "application/x-ndjson",
		Extension:   ".jsonl",
		Parse:       parseJSONL,
		Serialize:   serializeJSONL,
	})
}

// parseJSONL decodes one object per line. Lines that are not valid JSON
// objects are skipped; if none survive the result is empty.
func parseJSONL(data string, _ Options) (*Table, error) {
	t := &Table{}
	skipped := 0
	for _, line := range nonBlankLines(decodeText(data)) {
		obj, err := decodeJSONObject([]byte(line))
		if err != nil {
			skipped++
			continue
		}
		row := make(Row, obj.Len())
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			row[pair.Key] = stringifyJSON(pair.Value)
			t.addHeader(pair.Key)
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, emptyResult(FormatJSONL, "no valid JSON objects found")
	}
	if skipped > 0 {
		t.warn(fmt.Sprintf("jsonl: skipped %d invalid line(s)", skipped))
	}
	return t, nil
}

// serializeJSONL writes each row as a compact object followed by a newline.
func serializeJSONL(t *Table, _ Options) (string, error) {
	var b strings.Builder
	for _, row := range t.Rows {
		line, err := json.Marshal(rowObject(row, t.Headers))
		if err != nil {
			return "", fmt.Errorf("jsonl serialize: %w", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
