package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

func init() {
	Register(Codec{
		Format:      FormatTOML,
		Label:       "TOML",
		ContentType: "application/toml; charset=utf-8",
		Extension:   ".toml",
		Parse:       parseTOML,
		Serialize:   serializeTOML,
	})
}

const tomlRecordsKey = "records"

// parseTOML reads the [[records]] array of tables. Only string values are
// kept; key order follows the document.
func parseTOML(data string, _ Options) (*Table, error) {
	var doc map[string]any
	md, err := toml.Decode(decodeText(data), &doc)
	if err != nil {
		return nil, malformed(FormatTOML, "", err)
	}

	var records []map[string]any
	switch v := doc[tomlRecordsKey].(type) {
	case []map[string]any:
		records = v
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, m)
			}
		}
	}
	if len(records) == 0 {
		return nil, emptyResult(FormatTOML, "no [[records]] tables found")
	}

	t := &Table{}
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == tomlRecordsKey {
			t.addHeader(key[1])
		}
	}

	for _, rec := range records {
		row := make(Row, len(rec))
		var unseen []string
		for k, v := range rec {
			s, ok := v.(string)
			if !ok {
				continue
			}
			row[k] = s
			if !t.hasHeader(k) {
				unseen = append(unseen, k)
			}
		}
		sort.Strings(unseen)
		for _, k := range unseen {
			t.addHeader(k)
		}
		t.Rows = append(t.Rows, row)
	}

	// Headers that only ever held non-string values are dropped.
	kept := t.Headers[:0]
	for _, h := range t.Headers {
		for _, row := range t.Rows {
			if _, ok := row[h]; ok {
				kept = append(kept, h)
				break
			}
		}
	}
	t.Headers = kept
	return t, nil
}

var tomlBareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func tomlKey(k string) string {
	if tomlBareKey.MatchString(k) {
		return k
	}
	return tomlString(k)
}

// tomlString renders a TOML basic string.
func tomlString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// serializeTOML writes one [[records]] table per row with string values.
func serializeTOML(t *Table, _ Options) (string, error) {
	var b strings.Builder
	for i := range t.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[[" + tomlRecordsKey + "]]\n")
		for j, v := range t.Record(i) {
			b.WriteString(tomlKey(t.Headers[j]) + " = " + tomlString(v) + "\n")
		}
	}
	return b.String(), nil
}
