package core

import (
	"fmt"
	"strings"
)

// operatorAliases maps accepted operator spellings, lower-cased, to operators.
var operatorAliases = map[string]FilterOperator{
	"":           OpEquals,
	"equals":     OpEquals,
	"eq":         OpEquals,
	"contains":   OpContains,
	"startswith": OpStartsWith,
	"starts":     OpStartsWith,
	"endswith":   OpEndsWith,
	"ends":       OpEndsWith,
}

// ParseOperator resolves an operator name, ignoring case.
func ParseOperator(name string) (FilterOperator, error) {
	if op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return op, nil
	}
	return "", &FormatError{
		Kind:   ErrMalformedInput,
		Format: FormatCSV,
		Op:     "extract",
		Msg:    fmt.Sprintf("unknown filter operator %q", name),
	}
}

// Match reports whether value satisfies the filter. Comparison is
// case-sensitive.
func (op FilterOperator) Match(value, want string) bool {
	switch op {
	case OpContains:
		return strings.Contains(value, want)
	case OpStartsWith:
		return strings.HasPrefix(value, want)
	case OpEndsWith:
		return strings.HasSuffix(value, want)
	default:
		return value == want
	}
}

// ValidateColumns returns a ColumnNotFoundError naming every requested
// column missing from headers, or nil.
func ValidateColumns(headers, requested []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, c := range requested {
		if !present[c] {
			missing = append(missing, c)
			present[c] = true
		}
	}
	if len(missing) > 0 {
		return &ColumnNotFoundError{Missing: missing}
	}
	return nil
}

// ExtractColumns keeps the CSV rows matching every filter and projects them
// onto columns, in the requested order. Only the projected columns must
// exist; a filter on an absent column compares against "". An empty column
// list yields "" once the input has parsed.
func ExtractColumns(csvData string, columns []string, filters []Filter) (string, error) {
	t, err := ParseCSV(csvData)
	if err != nil {
		return "", err
	}

	ops := make([]FilterOperator, len(filters))
	for i, f := range filters {
		if ops[i], err = ParseOperator(string(f.Operator)); err != nil {
			return "", err
		}
	}

	if len(columns) == 0 {
		return "", nil
	}
	if err := ValidateColumns(t.Headers, columns); err != nil {
		return "", err
	}

	out := NewTable(columns)
	for _, row := range t.Rows {
		if !matchesAll(row, filters, ops) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return WriteCSV(out, out.Headers), nil
}

func matchesAll(row Row, filters []Filter, ops []FilterOperator) bool {
	for i, f := range filters {
		if !ops[i].Match(row[f.Column], f.Value) {
			return false
		}
	}
	return true
}
