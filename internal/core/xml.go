package core

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

func init() {
	Register(Codec{
		Format:      FormatXML,
		Label:       "XML",
		ContentType: "application/xml; charset=utf-8",
		Extension:   ".xml",
		Parse:       parseXML,
		Serialize:   serializeXML,
	})
}

// XMLStrategy identifies how rows were recovered from an XML document.
type XMLStrategy int

const (
	XMLRecordBased XMLStrategy = iota // one row per <record> element
	XMLItemBased                      // one row per <item> element
	XMLGenericLeaf                    // every leaf element collapsed into one row
	XMLSentinel                       // nothing recognizable, placeholder row
)

func (s XMLStrategy) String() string {
	switch s {
	case XMLRecordBased:
		return "record"
	case XMLItemBased:
		return "item"
	case XMLGenericLeaf:
		return "leaf"
	case XMLSentinel:
		return "sentinel"
	default:
		return fmt.Sprintf("XMLStrategy(%d)", int(s))
	}
}

type xmlExtractor struct {
	strategy XMLStrategy
	extract  func(doc string) *Table
}

// Strategies are tried in order; the first that yields rows wins.
var xmlExtractors = []xmlExtractor{
	{XMLRecordBased, blockExtractor("record")},
	{XMLItemBased, blockExtractor("item")},
	{XMLGenericLeaf, extractXMLLeaves},
	{XMLSentinel, func(string) *Table {
		t := NewTable([]string{"value"})
		t.AddRecord([]string{"N/A"})
		return t
	}},
}

var (
	xmlNoise = regexp.MustCompile(`(?s)<\?.*?\?>|<!--.*?-->|<!DOCTYPE[^>]*>`)
	xmlLeaf  = regexp.MustCompile(`<([A-Za-z_][\w.:-]*)(?:\s[^<>]*)?>([^<]*)</([A-Za-z_][\w.:-]*)\s*>`)
)

// ParseXML extracts a table from loosely structured XML and reports which
// strategy produced it. It never fails: documents with nothing recognizable
// yield a single {value: "N/A"} row.
func ParseXML(data string) (*Table, XMLStrategy) {
	doc := xmlNoise.ReplaceAllString(decodeText(data), "")
	for _, ex := range xmlExtractors {
		if t := ex.extract(doc); t != nil && len(t.Rows) > 0 {
			return t, ex.strategy
		}
	}
	return nil, XMLSentinel
}

func parseXML(data string, _ Options) (*Table, error) {
	t, strategy := ParseXML(data)
	if strategy != XMLRecordBased {
		t.warn("xml: no <record> elements found, rows recovered with the " + strategy.String() + " strategy")
	}
	return t, nil
}

// blockExtractor returns a row per <tag> element, with one column per leaf
// child element.
func blockExtractor(tag string) func(string) *Table {
	block := regexp.MustCompile(`(?s)<` + tag + `(?:\s[^>]*)?>(.*?)</` + tag + `\s*>`)
	return func(doc string) *Table {
		t := &Table{}
		for _, m := range block.FindAllStringSubmatch(doc, -1) {
			row := make(Row)
			for _, leaf := range xmlLeaves(m[1]) {
				row[leaf.name] = leaf.value
				t.addHeader(leaf.name)
			}
			t.Rows = append(t.Rows, row)
		}
		return t
	}
}

// extractXMLLeaves collapses every leaf element outside the document root
// into a single row. Later duplicates overwrite earlier values.
func extractXMLLeaves(doc string) *Table {
	t := &Table{}
	row := make(Row)
	for _, leaf := range xmlLeaves(doc) {
		if leaf.name == "root" || leaf.name == "xml" {
			continue
		}
		row[leaf.name] = leaf.value
		t.addHeader(leaf.name)
	}
	if len(row) > 0 {
		t.Rows = append(t.Rows, row)
	}
	return t
}

type xmlLeafValue struct {
	name  string
	value string
}

func xmlLeaves(fragment string) []xmlLeafValue {
	var out []xmlLeafValue
	for _, m := range xmlLeaf.FindAllStringSubmatch(fragment, -1) {
		if m[1] != m[3] {
			continue
		}
		out = append(out, xmlLeafValue{
			name:  m[1],
			value: strings.TrimSpace(html.UnescapeString(m[2])),
		})
	}
	return out
}

var xmlNameInvalid = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// xmlName turns a header into a valid element name.
func xmlName(s string, i int) string {
	name := xmlNameInvalid.ReplaceAllString(strings.TrimSpace(s), "_")
	if name == "" {
		return fmt.Sprintf("column_%d", i+1)
	}
	if c := name[0]; !(c == '_' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
		name = "_" + name
	}
	return name
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// serializeXML writes <root><record><header>value</header>...</record></root>
// with a declaration and two-space indentation.
func serializeXML(t *Table, opts Options) (string, error) {
	opts = opts.withDefaults()
	root := xmlName(opts.XMLRootTag, 0)

	names := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		names[i] = xmlName(h, i)
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<" + root + ">\n")
	for i := range t.Rows {
		b.WriteString("  <record>\n")
		for j, v := range t.Record(i) {
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", names[j], xmlEscape(v), names[j])
		}
		b.WriteString("  </record>\n")
	}
	b.WriteString("</" + root + ">\n")
	return b.String(), nil
}
