package core

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

func init() {
	Register(Codec{
		Format:      FormatHTML,
		Aliases:     []string{"table", "htm"},
		Label:       "HTML table",
		ContentType: "text/html; charset=utf-8",
		Extension:   ".html",
		Parse:       parseHTML,
		Serialize:   serializeHTML,
	})
}

// htmlRow collects the text of one <tr>.
type htmlRow struct {
	headers []string
	cells   []string
}

// values prefers <th> cells and falls back to <td> cells.
func (r htmlRow) values() []string {
	if len(r.headers) > 0 {
		return r.headers
	}
	return r.cells
}

// parseHTML reads every <tr> in the document. The first row with cells
// supplies the headers; missing header names become column_N.
//
// A tokenizer is used rather than html.Parse because the tree builder
// discards table rows that are not inside a <table>.
func parseHTML(data string, _ Options) (*Table, error) {
	rows := scanHTMLRows(decodeText(data))

	var t *Table
	for _, r := range rows {
		vals := r.values()
		if len(vals) == 0 {
			continue
		}
		if t == nil {
			headers := make([]string, len(vals))
			for i, v := range vals {
				headers[i] = syntheticHeader(v, i)
			}
			t = NewTable(headers)
			continue
		}
		for len(t.Headers) < len(vals) {
			t.Headers = append(t.Headers, syntheticHeader("", len(t.Headers)))
		}
		t.AddRecord(vals)
	}
	if t == nil {
		return &Table{}, nil
	}
	return t, nil
}

func syntheticHeader(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("column_%d", i+1)
	}
	return name
}

func scanHTMLRows(doc string) []htmlRow {
	z := html.NewTokenizer(strings.NewReader(doc))

	var (
		rows     []htmlRow
		row      *htmlRow
		cell     strings.Builder
		inCell   bool
		isHeader bool
		skip     int // depth inside <script> or <style>
	)

	closeCell := func() {
		if !inCell || row == nil {
			inCell = false
			return
		}
		text := strings.Join(strings.Fields(cell.String()), " ")
		if isHeader {
			row.headers = append(row.headers, text)
		} else {
			row.cells = append(row.cells, text)
		}
		cell.Reset()
		inCell = false
	}
	closeRow := func() {
		closeCell()
		if row != nil {
			rows = append(rows, *row)
			row = nil
		}
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			closeRow()
			return rows

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "tr":
				closeRow()
				row = &htmlRow{}
			case "td", "th":
				closeCell()
				if row == nil {
					row = &htmlRow{}
				}
				inCell = true
				isHeader = string(name) == "th"
			case "br":
				if inCell {
					cell.WriteByte(' ')
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "td", "th":
				closeCell()
			case "tr", "table", "thead", "tbody", "tfoot":
				closeRow()
			}

		case html.TextToken:
			if inCell && skip == 0 {
				cell.Write(z.Text())
			}
		}
	}
}

// serializeHTML writes a <table> with a <thead> header row and one <tbody>
// row per record. All text is HTML-escaped.
func serializeHTML(t *Table, _ Options) (string, error) {
	var b strings.Builder
	b.WriteString("<table>\n  <thead>\n    <tr>")
	for _, h := range t.Headers {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr>\n  </thead>\n  <tbody>\n")
	for i := range t.Rows {
		b.WriteString("    <tr>")
		for _, v := range t.Record(i) {
			b.WriteString("<td>" + html.EscapeString(v) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("  </tbody>\n</table>\n")
	return b.String(), nil
}
