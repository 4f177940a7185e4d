package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseXML_Strategies(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantStrategy XMLStrategy
		wantHeaders  []string
		wantRows     []Row
	}{
		{
			name: "record elements",
			input: `<?xml version="1.0"?>
<root>
  <record><name>Alice</name><age>30</age></record>
  <record><name>Bob &amp; Co</name><city>Oslo</city></record>
</root>`,
			wantStrategy: XMLRecordBased,
			wantHeaders:  []string{"name", "age", "city"},
			wantRows: []Row{
				{"name": "Alice", "age": "30"},
				{"name": "Bob & Co", "city": "Oslo"},
			},
		},
		{
			name:         "item elements",
			input:        `<rss><channel><item><title>One</title></item><item><title>Two</title></item></channel></rss>`,
			wantStrategy: XMLItemBased,
			wantHeaders:  []string{"title"},
			wantRows:     []Row{{"title": "One"}, {"title": "Two"}},
		},
		{
			name:         "leaf elements collapse to one row",
			input:        `<config><host>db</host><port>5432</port><host>replica</host></config>`,
			wantStrategy: XMLGenericLeaf,
			wantHeaders:  []string{"host", "port"},
			wantRows:     []Row{{"host": "replica", "port": "5432"}},
		},
		{
			name:         "nothing recognizable",
			input:        `just text`,
			wantStrategy: XMLSentinel,
			wantHeaders:  []string{"value"},
			wantRows:     []Row{{"value": "N/A"}},
		},
		{
			name:         "comments ignored",
			input:        `<root><!-- <record><a>x</a></record> --><record><b>y</b></record></root>`,
			wantStrategy: XMLRecordBased,
			wantHeaders:  []string{"b"},
			wantRows:     []Row{{"b": "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy := ParseXML(tt.input)
			if strategy != tt.wantStrategy {
				t.Errorf("strategy = %v, want %v", strategy, tt.wantStrategy)
			}
			if !reflect.DeepEqual(got.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %q, want %q", got.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("Rows = %v, want %v", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestSerializeXML(t *testing.T) {
	tbl := NewTable([]string{"first name", "1st", "note"})
	tbl.AddRecord([]string{"Ann", "x", "a < b & c"})

	got, err := serializeXML(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeXML() error = %v", err)
	}
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<root>",
		"    <first_name>Ann</first_name>",
		"    <_1st>x</_1st>",
		"    <note>a &lt; b &amp; c</note>",
		"</root>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("serializeXML() missing %q in:\n%s", want, got)
		}
	}
}

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    []Row
	}{
		{
			name:        "list of mappings",
			input:       "- name: Alice\n  age: 30\n- name: Bob\n  tags: [a, b]\n  note: ~\n",
			wantHeaders: []string{"name", "age", "tags", "note"},
			wantRows: []Row{
				{"name": "Alice", "age": "30"},
				{"name": "Bob", "tags": "[a, b]", "note": ""},
			},
		},
		{
			name:        "single mapping",
			input:       "host: db\nport: 5432\n",
			wantHeaders: []string{"host", "port"},
			wantRows:    []Row{{"host": "db", "port": "5432"}},
		},
		{
			name:        "invalid yaml falls back to line scanning",
			input:       "- name: \"Alice\"\n  role: admin\n- name: 'Bob'\n  role: [unclosed\n",
			wantHeaders: []string{"name", "role"},
			wantRows: []Row{
				{"name": "Alice", "role": "admin"},
				{"name": "Bob", "role": "[unclosed"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseYAML(tt.input, Options{})
			if err != nil {
				t.Fatalf("parseYAML() error = %v", err)
			}
			if !reflect.DeepEqual(got.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %q, want %q", got.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("Rows = %v, want %v", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestSerializeYAML_QuotesAmbiguousScalars(t *testing.T) {
	tbl := NewTable([]string{"age", "ok", "name"})
	tbl.AddRecord([]string{"30", "true", "Alice"})

	got, err := serializeYAML(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeYAML() error = %v", err)
	}
	want := "- age: \"30\"\n  ok: \"true\"\n  name: Alice\n"
	if got != want {
		t.Errorf("serializeYAML() = %q, want %q", got, want)
	}
}

func TestParseHTML(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    []Row
	}{
		{
			name: "th header row",
			input: `<table><thead><tr><th>Name</th><th>Age</th></tr></thead>
<tbody><tr><td>Alice &amp; Bob</td><td> 30 </td></tr></tbody></table>`,
			wantHeaders: []string{"Name", "Age"},
			wantRows:    []Row{{"Name": "Alice & Bob", "Age": "30"}},
		},
		{
			name:        "td header row and extra cells",
			input:       `<tr><td>a</td></tr><tr><td>1</td><td>2</td></tr>`,
			wantHeaders: []string{"a", "column_2"},
			wantRows:    []Row{{"a": "1", "column_2": "2"}},
		},
		{
			name:        "markup inside cells collapsed",
			input:       "<table><tr><th><b>Bold</b>\n header</th></tr><tr><td>x<br>y</td></tr></table>",
			wantHeaders: []string{"Bold header"},
			wantRows:    []Row{{"Bold header": "x y"}},
		},
		{
			name:        "no rows",
			input:       `<p>nothing</p>`,
			wantHeaders: nil,
			wantRows:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHTML(tt.input, Options{})
			if err != nil {
				t.Fatalf("parseHTML() error = %v", err)
			}
			if !reflect.DeepEqual(got.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %q, want %q", got.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("Rows = %v, want %v", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestSerializeHTML_Escapes(t *testing.T) {
	tbl := NewTable([]string{"<h>"})
	tbl.AddRecord([]string{`"x" & 'y'`})

	got, _ := serializeHTML(tbl, Options{})
	if !strings.Contains(got, "<th>&lt;h&gt;</th>") {
		t.Errorf("header not escaped:\n%s", got)
	}
	if !strings.Contains(got, "<td>&#34;x&#34; &amp; &#39;y&#39;</td>") {
		t.Errorf("cell not escaped:\n%s", got)
	}
}

func TestParseMarkdown(t *testing.T) {
	input := `| name | note |
|------|:----:|
| Alice | a \| b |
| short |
| Bob | |`

	got, err := parseMarkdown(input, Options{})
	if err != nil {
		t.Fatalf("parseMarkdown() error = %v", err)
	}
	wantRows := []Row{
		{"name": "Alice", "note": "a | b"},
		{"name": "Bob", "note": ""},
	}
	if !reflect.DeepEqual(got.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", got.Rows, wantRows)
	}
}

func TestParseMarkdown_Boundaries(t *testing.T) {
	_, err := parseMarkdown("| a |\n| --- |", Options{})
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("two lines: error = %v, want ErrMalformedInput", err)
	}

	got, err := parseMarkdown("| a |\n| --- |\n| 1 | 2 |", Options{})
	if err != nil {
		t.Fatalf("three lines: error = %v", err)
	}
	if len(got.Rows) != 0 || !reflect.DeepEqual(got.Headers, []string{"a"}) {
		t.Errorf("three lines: got %+v, want header a and no rows", got)
	}
}

func TestSerializeMarkdown(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	tbl.AddRecord([]string{"x|y", "two\nlines"})

	got, _ := serializeMarkdown(tbl, Options{})
	want := "| a | b |\n| --- | --- |\n| x\\|y | two lines |\n"
	if got != want {
		t.Errorf("serializeMarkdown() = %q, want %q", got, want)
	}
}
