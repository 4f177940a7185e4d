package core

import (
	"fmt"
	"regexp"
	"strings"
)

func init() {
	Register(Codec{
		Format:      FormatSQL,
		Label:       "SQL inserts",
		ContentType: "application/sql; charset=utf-8",
		Extension:   ".sql",
		Parse:       parseSQL,
		Serialize:   serializeSQL,
	})
}

var (
	sqlCreateTable = regexp.MustCompile(`(?i)\bCREATE\s+(?:TEMP(?:ORARY)?\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?[^\s(]+\s*\(`)
	sqlInsertInto  = regexp.MustCompile(`(?i)\bINSERT\s+INTO\s+[^\s(]+\s*`)
	sqlValues      = regexp.MustCompile(`(?i)^\s*VALUES\s*`)
	sqlOtherStmt   = regexp.MustCompile(`(?im)^\s*(SELECT|UPDATE|DELETE|MERGE|WITH)\b`)
)

// sqlConstraintWords start table-level constraint clauses in CREATE TABLE.
var sqlConstraintWords = map[string]bool{
	"PRIMARY": true, "FOREIGN": true, "UNIQUE": true, "CONSTRAINT": true,
	"KEY": true, "INDEX": true, "CHECK": true,
}

// parseSQL recovers rows from INSERT INTO ... VALUES statements. Column
// names come from the statement's column list, then CREATE TABLE, then
// column_N.
func parseSQL(data string, _ Options) (*Table, error) {
	src := decodeText(data)

	var schema []string
	if loc := sqlCreateTable.FindStringIndex(src); loc != nil {
		if body, _, ok := scanParens(src, loc[1]-1); ok {
			schema = sqlColumnDefs(body)
		}
	}

	t := NewTable(schema)
	inserts := sqlInsertInto.FindAllStringIndex(src, -1)
	for _, loc := range inserts {
		pos := loc[1]
		cols := schema
		if pos < len(src) && src[pos] == '(' {
			body, next, ok := scanParens(src, pos)
			if !ok {
				return nil, malformed(FormatSQL, "unterminated column list", nil)
			}
			cols = splitSQLList(body)
			for i := range cols {
				cols[i] = sqlIdent(cols[i])
			}
			pos = next
		}

		m := sqlValues.FindStringIndex(src[pos:])
		if m == nil {
			continue
		}
		pos += m[1]

		for pos < len(src) && src[pos] == '(' {
			body, next, ok := scanParens(src, pos)
			if !ok {
				return nil, malformed(FormatSQL, "unterminated VALUES tuple", nil)
			}
			values := sqlTupleValues(body)
			row := make(Row, len(values))
			for i, v := range values {
				name := syntheticHeader("", i)
				if i < len(cols) {
					name = cols[i]
				}
				t.addHeader(name)
				row[name] = v
			}
			t.Rows = append(t.Rows, row)

			pos = next
			for pos < len(src) && (src[pos] == ',' || isSpace(src[pos])) {
				pos++
			}
		}
	}

	if len(t.Rows) == 0 {
		if len(inserts) == 0 && sqlOtherStmt.MatchString(src) {
			return nil, notImplemented(FormatSQL, "parse", "only INSERT statements can be converted")
		}
		return nil, emptyResult(FormatSQL, "no INSERT ... VALUES rows found")
	}
	return t, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanParens returns the text between the parenthesis at open and its match,
// plus the index after the closing parenthesis. Quoted text is skipped.
func scanParens(s string, open int) (string, int, bool) {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				if i+1 < len(s) && s[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], i + 1, true
			}
		}
	}
	return "", len(s), false
}

// splitSQLList splits on top-level commas, respecting quotes and nesting.
func splitSQLList(s string) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				if i+1 < len(s) && s[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func sqlColumnDefs(body string) []string {
	var cols []string
	for _, def := range splitSQLList(body) {
		fields := strings.Fields(def)
		if len(fields) == 0 || sqlConstraintWords[strings.ToUpper(fields[0])] {
			continue
		}
		cols = append(cols, sqlIdent(fields[0]))
	}
	return cols
}

// sqlIdent strips identifier quoting: "x", `x` or [x].
func sqlIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"',
			s[0] == '`' && s[len(s)-1] == '`',
			s[0] == '[' && s[len(s)-1] == ']':
			return s[1 : len(s)-1]
		}
	}
	return s
}

// sqlTupleValues decodes a VALUES tuple. NULL becomes "", quoted strings
// are unescaped and other literals are kept verbatim.
func sqlTupleValues(body string) []string {
	items := splitSQLList(body)
	values := make([]string, len(items))
	for i, item := range items {
		switch {
		case strings.EqualFold(item, "NULL"):
			values[i] = ""
		case len(item) >= 2 && (item[0] == '\'' || item[0] == '"') && item[len(item)-1] == item[0]:
			values[i] = unquoteSQL(item[1:len(item)-1], item[0])
		default:
			values[i] = item
		}
	}
	return values
}

func unquoteSQL(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote && i+1 < len(s) && s[i+1] == quote:
			b.WriteByte(quote)
			i++
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case '0':
				b.WriteByte(0)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'Z':
				b.WriteByte(0x1a)
			default:
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var (
	sqlIdentInvalid = regexp.MustCompile(`[^A-Za-z0-9_]`)
	sqlEscaper      = strings.NewReplacer(
		`\`, `\\`,
		`'`, `''`,
		"\x00", `\0`,
		"\n", `\n`,
		"\r", `\r`,
		"\x1a", `\Z`,
	)
)

// sqlName turns a header into a bare identifier.
func sqlName(s string, i int) string {
	name := sqlIdentInvalid.ReplaceAllString(strings.TrimSpace(s), "_")
	if name == "" {
		return syntheticHeader("", i)
	}
	if c := name[0]; c >= '0' && c <= '9' {
		name = "_" + name
	}
	return name
}

// serializeSQL writes a CREATE TABLE with TEXT columns followed by one
// INSERT per row.
func serializeSQL(t *Table, opts Options) (string, error) {
	opts = opts.withDefaults()
	table := sqlName(opts.SQLTableName, 0)

	cols := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		cols[i] = sqlName(h, i)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE " + table + " (\n")
	for i, c := range cols {
		b.WriteString("  " + c + " TEXT")
		if i < len(cols)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(");\n")

	colList := strings.Join(cols, ", ")
	for i := range t.Rows {
		rec := t.Record(i)
		vals := make([]string, len(rec))
		for j, v := range rec {
			vals[j] = "'" + sqlEscaper.Replace(v) + "'"
		}
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s);\n", table, colList, strings.Join(vals, ", "))
	}
	return b.String(), nil
}
