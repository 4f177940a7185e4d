// Package templates holds the templ components rendered by the web server.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/jomardyan/ToolBox/internal/core"
	"github.com/jomardyan/ToolBox/internal/history"
)

// IndexParams feeds the single-page converter.
type IndexParams struct {
	Formats []core.FormatInfo
	Recent  []history.Entry

	// Form state echoed back after a submit.
	Input string
	From  string
	To    string

	// Set after a successful conversion.
	Output   string
	Warnings []string
	Rows     int
	Columns  int
}

// HasResult reports whether a conversion result should be shown.
func (p IndexParams) HasResult() bool {
	return p.Output != "" || p.Rows > 0
}

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem;color:#1f2937}
textarea{width:100%;min-height:12rem;font-family:ui-monospace,monospace}
table{border-collapse:collapse}td,th{border:1px solid #d1d5db;padding:.25rem .5rem;text-align:left}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.75rem;border-radius:.375rem}
.warn{color:#92400e}`

// Index renders the converter page: a form, the last result, the format
// catalogue and recent history.
func Index(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>ToolBox converter</title><style>%s</style></head><body>`, pageStyle)
		ew.print(`<h1>ToolBox converter</h1>`)

		ew.print(`<form method="post" action="/convert">`)
		ew.print(`<label>From `)
		writeFormatSelect(ew, "from", p.Formats, p.From)
		ew.print(`</label> <label>To `)
		writeFormatSelect(ew, "to", p.Formats, p.To)
		ew.print(`</label>`)
		ew.printf(`<p><textarea name="data" placeholder="Paste input here">%s</textarea></p>`, templ.EscapeString(p.Input))
		ew.print(`<button type="submit">Convert</button></form>`)

		if p.HasResult() {
			ew.printf(`<h2>Result</h2><p>%d rows, %d columns</p>`, p.Rows, p.Columns)
			for _, warning := range p.Warnings {
				ew.printf(`<p class="warn">%s</p>`, templ.EscapeString(warning))
			}
			ew.printf(`<textarea readonly>%s</textarea>`, templ.EscapeString(p.Output))
		}

		ew.print(`<h2>Formats</h2><table><thead><tr><th>Name</th><th>Aliases</th><th>Content type</th></tr></thead><tbody>`)
		for _, f := range p.Formats {
			ew.printf(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(f.Label),
				templ.EscapeString(strings.Join(f.Aliases, ", ")),
				templ.EscapeString(f.ContentType))
		}
		ew.print(`</tbody></table>`)

		if len(p.Recent) > 0 {
			ew.print(`<h2>Recent conversions</h2><table><thead><tr><th>When</th><th>Operation</th><th>From</th><th>To</th><th>Rows</th><th>Result</th></tr></thead><tbody>`)
			for _, e := range p.Recent {
				result := "ok"
				if e.Failed() {
					result = e.ErrorCode
				}
				ew.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>`,
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					templ.EscapeString(e.Operation),
					templ.EscapeString(e.Source),
					templ.EscapeString(e.Target),
					e.Rows,
					templ.EscapeString(result))
			}
			ew.print(`</tbody></table>`)
		}

		ew.print(`</body></html>`)
		return ew.err
	})
}

// ErrorAlert renders an error fragment suitable for HTMX swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<div class="alert" role="alert"><strong>%s</strong>`, templ.EscapeString(message))
		if action != "" {
			ew.printf(`<p>%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			ew.printf(`<small>Code: %s</small>`, templ.EscapeString(code))
		}
		ew.print(`</div>`)
		return ew.err
	})
}

func writeFormatSelect(ew *errWriter, name string, formats []core.FormatInfo, selected string) {
	ew.printf(`<select name="%s">`, name)
	for _, f := range formats {
		sel := ""
		if string(f.Name) == selected {
			sel = " selected"
		}
		ew.printf(`<option value="%s"%s>%s</option>`,
			templ.EscapeString(string(f.Name)), sel, templ.EscapeString(f.Label))
	}
	ew.print(`</select>`)
}

// errWriter keeps the first write error so components can write freely.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) print(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
