package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    []Row
	}{
		{
			name:        "array keeps key order",
			input:       `[{"z":"last","a":1}]`,
			wantHeaders: []string{"z", "a"},
			wantRows:    []Row{{"z": "last", "a": "1"}},
		},
		{
			name:        "single object becomes one row",
			input:       `{"name":"Alice","active":true}`,
			wantHeaders: []string{"name", "active"},
			wantRows:    []Row{{"name": "Alice", "active": "true"}},
		},
		{
			name:        "null and nested values",
			input:       `[{"a":null,"b":{"c":[1,2]},"d":1.5,"e":100000000}]`,
			wantHeaders: []string{"a", "b", "d", "e"},
			wantRows:    []Row{{"a": "", "b": `{"c":[1,2]}`, "d": "1.5", "e": "100000000"}},
		},
		{
			name:        "empty array",
			input:       `[]`,
			wantHeaders: nil,
			wantRows:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJSON(tt.input, Options{})
			if err != nil {
				t.Fatalf("parseJSON() error = %v", err)
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

func TestParseJSON_Malformed(t *testing.T) {
	inputs := map[string]string{
		"empty":            "",
		"truncated":        `[{"a":1}`,
		"scalar":           `42`,
		"array of scalars": `[1,2]`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := parseJSON(in, Options{})
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("parseJSON(%q) error = %v, want ErrMalformedInput", in, err)
			}
		})
	}
}

func TestSerializeJSON(t *testing.T) {
	tbl := &Table{
		Headers: []string{"b", "a"},
		Rows:    []Row{{"a": "1", "b": "2"}},
	}
	got, err := serializeJSON(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeJSON() error = %v", err)
	}
	want := "[\n  {\n    \"b\": \"2\",\n    \"a\": \"1\"\n  }\n]"
	if got != want {
		t.Errorf("serializeJSON() = %q, want %q", got, want)
	}

	empty, _ := serializeJSON(&Table{}, Options{})
	if empty != "[]" {
		t.Errorf("serializeJSON(empty) = %q, want []", empty)
	}
}

func TestParseJSONL(t *testing.T) {
	got, err := parseJSONL("{\"a\":1}\ninvalid\n{\"a\":2,\"b\":\"x\"}\n", Options{})
	if err != nil {
		t.Fatalf("parseJSONL() error = %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}
	if !reflect.DeepEqual(got.Headers, []string{"a", "b"}) {
		t.Errorf("Headers = %q, want union [a b]", got.Headers)
	}
	if got.Rows[1]["b"] != "x" {
		t.Errorf("second row b = %q, want x", got.Rows[1]["b"])
	}
	if len(got.Warnings()) != 1 {
		t.Errorf("Warnings() = %v, want one skipped-line warning", got.Warnings())
	}
}

func TestParseJSONL_AllInvalid(t *testing.T) {
	_, err := parseJSONL("invalid", Options{})
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("parseJSONL() error = %v, want ErrEmptyResult", err)
	}
}

func TestSerializeJSONL(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	tbl.AddRecord([]string{"1", "x"})
	tbl.AddRecord([]string{"2", "y"})

	got, err := serializeJSONL(tbl, Options{})
	if err != nil {
		t.Fatalf("serializeJSONL() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	want := []string{`{"a":"1","b":"x"}`, `{"a":"2","b":"y"}`}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("serializeJSONL() lines = %q, want %q", lines, want)
	}
}
