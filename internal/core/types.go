package core

// Row maps a column name to its cell value. Cells are always untyped strings;
// a missing key reads as the empty string.
type Row map[string]string

// Table is the canonical intermediate representation every format converts
// through. Rows may be partial: serializers treat missing cells as "".
type Table struct {
	Headers []string
	Rows    []Row

	warnings []string
}

// NewTable creates an empty table with a copy of the given headers.
func NewTable(headers []string) *Table {
	h := make([]string, len(headers))
	copy(h, headers)
	return &Table{Headers: h}
}

// AddRecord appends a row built positionally from values. Values beyond the
// header count are dropped; missing trailing values become empty cells.
func (t *Table) AddRecord(values []string) {
	row := make(Row, len(t.Headers))
	for i, h := range t.Headers {
		if i < len(values) {
			row[h] = values[i]
		} else {
			row[h] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// Record returns row i's cells in header order.
func (t *Table) Record(i int) []string {
	return recordFor(t.Rows[i], t.Headers)
}

// Warnings returns non-fatal notes collected while parsing.
func (t *Table) Warnings() []string {
	return t.warnings
}

func (t *Table) warn(msg string) {
	t.warnings = append(t.warnings, msg)
}

// hasHeader reports whether name is one of the table's headers.
func (t *Table) hasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// addHeader appends name to the headers if it is not already present.
func (t *Table) addHeader(name string) {
	if !t.hasHeader(name) {
		t.Headers = append(t.Headers, name)
	}
}

func recordFor(row Row, headers []string) []string {
	rec := make([]string, len(headers))
	for i, h := range headers {
		rec[i] = row[h]
	}
	return rec
}

// Options tunes serializers that need names the data does not carry.
type Options struct {
	// SQLTableName is the table used in generated SQL (default "data").
	SQLTableName string `json:"sqlTable,omitempty"`

	// XMLRootTag is the document element of generated XML (default "root").
	XMLRootTag string `json:"xmlRoot,omitempty"`
}

const (
	DefaultSQLTableName = "data"
	DefaultXMLRootTag   = "root"
)

func (o Options) withDefaults() Options {
	if o.SQLTableName == "" {
		o.SQLTableName = DefaultSQLTableName
	}
	if o.XMLRootTag == "" {
		o.XMLRootTag = DefaultXMLRootTag
	}
	return o
}

// Result is the outcome of a conversion with its diagnostics.
type Result struct {
	Output   string   `json:"output"`
	Format   Format   `json:"format"`
	Rows     int      `json:"rows"`
	Columns  int      `json:"columns"`
	Warnings []string `json:"warnings,omitempty"`
}

// FilterOperator represents a comparison operator for row filters.
type FilterOperator string

const (
	OpEquals     FilterOperator = "equals"
	OpContains   FilterOperator = "contains"
	OpStartsWith FilterOperator = "startsWith"
	OpEndsWith   FilterOperator = "endsWith"
)

// Filter is a single row predicate. All filters passed to ExtractColumns are
// combined with AND logic.
type Filter struct {
	Column   string         `json:"column"`
	Value    string         `json:"value"`
	Operator FilterOperator `json:"operator,omitempty"` // defaults to OpEquals
}
