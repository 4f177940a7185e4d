package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseTSV(t *testing.T) {
	got, err := parseTSV("a\tb\n\n1\t\"2\"\r\n3\n", Options{})
	if err != nil {
		t.Fatalf("parseTSV() error = %v", err)
	}
	want := []Row{{"a": "1", "b": `"2"`}, {"a": "3", "b": ""}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestSerializeTSV_EmbeddedTabNotEscaped(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	tbl.AddRecord([]string{"x\ty", "z"})

	out, err := serializeTSV(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeTSV() error = %v", err)
	}
	if out != "a\tb\nx\ty\tz" {
		t.Errorf("serializeTSV() = %q", out)
	}

	back, err := parseTSV(out, Options{})
	if err != nil {
		t.Fatalf("parseTSV() error = %v", err)
	}
	if got := back.Rows[0]["a"]; got != "x" {
		t.Errorf("reparsed a = %q, want the cell split at the tab", got)
	}
}

func TestParseTXT(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "pipe table with divider",
			input: "name  | age\n------+----\nAlice | 30\n",
			want:  []Row{{"name": "Alice", "age": "30"}},
		},
		{
			name:  "comma separated without divider",
			input: "name, age\nBob, 25",
			want:  []Row{{"name": "Bob", "age": "25"}},
		},
		{
			name:  "tab separated",
			input: "name\tage\n-\t-\nCy\t40",
			want:  []Row{{"name": "Cy", "age": "40"}},
		},
		{
			name:  "single line",
			input: "name | age",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTXT(tt.input, Options{})
			if err != nil {
				t.Fatalf("parseTXT() error = %v", err)
			}
			if !reflect.DeepEqual(got.Rows, tt.want) {
				t.Errorf("Rows = %v, want %v", got.Rows, tt.want)
			}
		})
	}
}

func TestSerializeTXT(t *testing.T) {
	tbl := NewTable([]string{"name", "age"})
	tbl.AddRecord([]string{"Alice", "30"})

	got, _ := serializeTXT(tbl, Options{})
	want := "name  | age\n------+----\nAlice | 30\n"
	if got != want {
		t.Errorf("serializeTXT() = %q, want %q", got, want)
	}
}

func TestTXT_PipeInCellSurvivesRoundTrip(t *testing.T) {
	input := "name,note\nAlice,pipe | here\nBob,a|b"

	out, err := FromCSV(input, "txt")
	if err != nil {
		t.Fatalf("FromCSV() error = %v", err)
	}
	if !strings.Contains(out, `pipe \| here`) {
		t.Errorf("txt output does not escape the pipe:\n%s", out)
	}

	back, err := ToCSV(out, "txt")
	if err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}
	if back != input {
		t.Errorf("round trip = %q, want %q", back, input)
	}
}

func TestParseExcel(t *testing.T) {
	got, err := parseExcel("a\tb\r\n\"x\ty\"\t2\r\n", Options{})
	if err != nil {
		t.Fatalf("parseExcel() error = %v", err)
	}
	want := []Row{{"a": "x\ty", "b": "2"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}

	utf16 := "\xFF\xFEa\x00\t\x00b\x00\n\x001\x00\t\x002\x00"
	got, err = parseExcel(utf16, Options{})
	if err != nil {
		t.Fatalf("parseExcel(utf16) error = %v", err)
	}
	if !reflect.DeepEqual(got.Rows, []Row{{"a": "1", "b": "2"}}) {
		t.Errorf("utf16 Rows = %v", got.Rows)
	}
}

func TestParseExcel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"xlsx container", "PK\x03\x04\x14\x00", ErrNotImplemented},
		{"xls container", "\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1\x00", ErrNotImplemented},
		{"header only", "a\tb", ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseExcel(tt.input, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseExcel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
  <Placemark><name><![CDATA[Office & Lab]]></name>
    <Point><coordinates>
      10.75,59.91,0 11.0,60.0,0
    </coordinates></Point></Placemark>
  <Placemark><name>No point</name></Placemark>
  <Placemark><name>Pier</name><Point><coordinates>-122.4,37.8</coordinates></Point></Placemark>
</Document></kml>`

func TestParseKML(t *testing.T) {
	got, err := parseKML(sampleKML, Options{})
	if err != nil {
		t.Fatalf("parseKML() error = %v", err)
	}
	want := []Row{
		{"name": "Office & Lab", "longitude": "10.75", "latitude": "59.91"},
		{"name": "Pier", "longitude": "-122.4", "latitude": "37.8"},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestSerializeKML(t *testing.T) {
	tbl := NewTable([]string{"Title", "lat", "lng", "kind"})
	tbl.AddRecord([]string{"Dock <A>", "37.8", "-122.4", "pier"})

	got, err := serializeKML(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeKML() error = %v", err)
	}
	for _, want := range []string{
		"<name>Dock &lt;A&gt;</name>",
		"<description>kind: pier</description>",
		"<coordinates>-122.4,37.8</coordinates>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("serializeKML() missing %q in:\n%s", want, got)
		}
	}

	back, err := parseKML(got, Options{})
	if err != nil {
		t.Fatalf("parseKML(serialized) error = %v", err)
	}
	if back.Rows[0]["name"] != "Dock <A>" {
		t.Errorf("round trip name = %q", back.Rows[0]["name"])
	}
}

func TestSerializeKML_NoCoordinates(t *testing.T) {
	tbl := NewTable([]string{"name"})
	tbl.AddRecord([]string{"x"})
	if _, err := serializeKML(tbl, Options{}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("serializeKML() error = %v, want ErrMalformedInput", err)
	}
}

func TestParseICS(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:Team sync\\, weekly\r\nDTSTART;TZID=\"Europe/Oslo:x\":20240115T100000\r\n" +
		"DTEND:20240115T110000Z\r\nDESCRIPTION:Line one\\nline \r\n two\r\nEND:VEVENT\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:Holiday\r\nDTSTART;VALUE=DATE:20241225\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	got, err := parseICS(input, Options{})
	if err != nil {
		t.Fatalf("parseICS() error = %v", err)
	}
	want := []Row{
		{"summary": "Team sync, weekly", "dtstart": "20240115T100000", "dtend": "20240115T110000Z", "description": "Line one\nline two"},
		{"summary": "Holiday", "dtstart": "20241225", "dtend": "", "description": ""},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestParseICS_NoEvents(t *testing.T) {
	_, err := parseICS("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", Options{})
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("parseICS() error = %v, want ErrEmptyResult", err)
	}
}

func TestSerializeICS(t *testing.T) {
	tbl := NewTable([]string{"title", "start", "notes"})
	tbl.AddRecord([]string{"Launch; v2", "2024-03-01 09:30:00", "bring, snacks"})
	tbl.AddRecord([]string{"Offsite", "2024-04-02", strings.Repeat("x", 100)})

	got, err := serializeICS(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeICS() error = %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"SUMMARY:Launch\\; v2\r\n",
		"DTSTART:20240301T093000Z\r\n",
		"DESCRIPTION:bring\\, snacks\r\n",
		"DTSTART;VALUE=DATE:20240402\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("serializeICS() missing %q", want)
		}
	}
	for _, line := range strings.Split(got, "\r\n") {
		if len(line) > 75 {
			t.Errorf("line longer than 75 octets: %q", line)
		}
	}

	again, _ := serializeICS(tbl, Options{})
	if again != got {
		t.Error("serializeICS() is not deterministic")
	}

	back, err := parseICS(got, Options{})
	if err != nil {
		t.Fatalf("parseICS(serialized) error = %v", err)
	}
	if back.Rows[1]["description"] != strings.Repeat("x", 100) {
		t.Errorf("folded description = %q", back.Rows[1]["description"])
	}
}

func TestParseTOML(t *testing.T) {
	input := `title = "ignored"

[[records]]
name = "Alice"
age = 30
"home town" = "Oslo"

[[records]]
name = "Bob"
`
	got, err := parseTOML(input, Options{})
	if err != nil {
		t.Fatalf("parseTOML() error = %v", err)
	}
	if !reflect.DeepEqual(got.Headers, []string{"name", "home town"}) {
		t.Errorf("Headers = %q, want [name home town]", got.Headers)
	}
	want := []Row{{"name": "Alice", "home town": "Oslo"}, {"name": "Bob"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestParseTOML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"syntax error", "[[records]\nname = ", ErrMalformedInput},
		{"no records", "title = \"x\"", ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTOML(tt.input, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseTOML() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSerializeTOML(t *testing.T) {
	tbl := NewTable([]string{"name", "home town"})
	tbl.AddRecord([]string{`say "hi"`, "a\\b"})

	got, _ := serializeTOML(tbl, Options{})
	want := "[[records]]\nname = \"say \\\"hi\\\"\"\n\"home town\" = \"a\\\\b\"\n"
	if got != want {
		t.Errorf("serializeTOML() = %q, want %q", got, want)
	}
}

func TestParseSQL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    []Row
	}{
		{
			name: "create table supplies columns",
			input: `CREATE TABLE people (
  id INT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  PRIMARY KEY (id)
);
INSERT INTO people VALUES (1, 'O''Brien'), (2, NULL);`,
			wantHeaders: []string{"id", "name"},
			wantRows: []Row{
				{"id": "1", "name": "O'Brien"},
				{"id": "2", "name": ""},
			},
		},
		{
			name:        "insert column list",
			input:       "INSERT INTO `t` (`a`, \"b\") VALUES ('x\\'s', 'semi;colon');",
			wantHeaders: []string{"a", "b"},
			wantRows:    []Row{{"a": "x's", "b": "semi;colon"}},
		},
		{
			name:        "no column names",
			input:       "insert into t values ('p', 'q')",
			wantHeaders: []string{"column_1", "column_2"},
			wantRows:    []Row{{"column_1": "p", "column_2": "q"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSQL(tt.input, Options{})
			if err != nil {
				t.Fatalf("parseSQL() error = %v", err)
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

func TestParseSQL_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"select only", "SELECT id FROM people;", ErrNotImplemented},
		{"update only", "update people set a = 1;", ErrNotImplemented},
		{"nothing", "-- empty script", ErrEmptyResult},
		{"unterminated tuple", "INSERT INTO t VALUES ('a', 'b'", ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSQL(tt.input, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseSQL() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSerializeSQL_Escaping(t *testing.T) {
	tbl := NewTable([]string{"first name", "9lives"})
	tbl.AddRecord([]string{"it's", "a\\b\nc\x00\x1a"})

	got, _ := serializeSQL(tbl, Options{})
	want := "CREATE TABLE data (\n  first_name TEXT,\n  _9lives TEXT\n);\n" +
		"INSERT INTO data (first_name, _9lives) VALUES ('it''s', 'a\\\\b\\nc\\0\\Z');\n"
	if got != want {
		t.Errorf("serializeSQL() = %q, want %q", got, want)
	}

	back, err := parseSQL(got, Options{})
	if err != nil {
		t.Fatalf("parseSQL(serialized) error = %v", err)
	}
	if back.Rows[0]["_9lives"] != "a\\b\nc\x00\x1a" {
		t.Errorf("round trip = %q", back.Rows[0]["_9lives"])
	}
}
