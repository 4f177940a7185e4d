package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

func init() {
	Register(Codec{
		Format:      FormatICS,
		Aliases:     []string{"ical", "icalendar"},
		Label:       "iCalendar events",
		ContentType: "text/calendar; charset=utf-8",
		Extension:   ".ics",
		Parse:       parseICS,
		Serialize:   serializeICS,
	})
}

var icsHeaders = []string{"summary", "dtstart", "dtend", "description"}

var icsEvent = regexp.MustCompile(`(?s)BEGIN:VEVENT\r?\n(.*?)END:VEVENT`)

// parseICS reads SUMMARY, DTSTART, DTEND and DESCRIPTION from each VEVENT.
// Folded lines are joined and text escapes are decoded.
func parseICS(data string, _ Options) (*Table, error) {
	doc := unfoldICS(decodeText(data))

	t := NewTable(icsHeaders)
	for _, m := range icsEvent.FindAllStringSubmatch(doc, -1) {
		row := make(Row, len(icsHeaders))
		for _, h := range icsHeaders {
			row[h] = ""
		}
		for _, line := range strings.Split(m[1], "\n") {
			name, value, ok := splitICSProperty(line)
			if !ok {
				continue
			}
			switch name {
			case "SUMMARY", "DESCRIPTION":
				row[strings.ToLower(name)] = unescapeICS(value)
			case "DTSTART", "DTEND":
				row[strings.ToLower(name)] = value
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, emptyResult(FormatICS, "no events found")
	}
	return t, nil
}

func unfoldICS(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n ", "")
	return strings.ReplaceAll(s, "\n\t", "")
}

// splitICSProperty splits "NAME;PARAM=x:value" into the upper-cased name
// and the value. Colons inside quoted parameter values are skipped.
func splitICSProperty(line string) (name, value string, ok bool) {
	line = strings.TrimRight(line, "\r")
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ':':
			if quoted {
				continue
			}
			name, _, _ = strings.Cut(line[:i], ";")
			return strings.ToUpper(strings.TrimSpace(name)), line[i+1:], true
		}
	}
	return "", "", false
}

func unescapeICS(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`, "\r", "")

// icsNamespace seeds deterministic event UIDs.
var icsNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/jomardyan/ToolBox/ics"))

// serializeICS writes a VCALENDAR with one VEVENT per row. Event UIDs are
// derived from the row content, so the same table always yields the same
// calendar.
func serializeICS(t *Table, _ Options) (string, error) {
	summary := findColumn(t.Headers, "summary", "title", "name", "event", "subject")
	start := findColumn(t.Headers, "dtstart", "start", "start_date", "startdate", "date", "begin")
	end := findColumn(t.Headers, "dtend", "end", "end_date", "enddate", "finish")
	desc := findColumn(t.Headers, "description", "details", "notes")
	if summary == "" && len(t.Headers) > 0 {
		summary = t.Headers[0]
	}

	stamp := time.Unix(0, 0).UTC().Format(icsDateTime)

	var lines []string
	lines = append(lines,
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ToolBox//Data Converter//EN",
		"CALSCALE:GREGORIAN",
	)
	for i, row := range t.Rows {
		uid := uuid.NewSHA1(icsNamespace, []byte(strconv.Itoa(i)+"\x00"+strings.Join(t.Record(i), "\x00")))
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+uid.String()+"@toolbox",
			"DTSTAMP:"+stamp,
			"SUMMARY:"+icsEscaper.Replace(row[summary]),
		)
		if start != "" && strings.TrimSpace(row[start]) != "" {
			lines = append(lines, icsDateProperty("DTSTART", row[start]))
		}
		if end != "" && strings.TrimSpace(row[end]) != "" {
			lines = append(lines, icsDateProperty("DTEND", row[end]))
		}
		if desc != "" && row[desc] != "" {
			lines = append(lines, "DESCRIPTION:"+icsEscaper.Replace(row[desc]))
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(foldICS(l))
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

const (
	icsDateTime = "20060102T150405Z"
	icsDate     = "20060102"
)

var (
	icsDateTimeLayouts = []string{
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"20060102T150405Z", "20060102T150405",
	}
	icsDateLayouts = []string{
		"2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006", "Jan 2, 2006", "2 Jan 2006", "20060102",
	}
)

// icsDateProperty formats a date or date-time cell. Values that do not
// parse are written unchanged.
func icsDateProperty(name, value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range icsDateTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return name + ":" + ts.UTC().Format(icsDateTime)
		}
	}
	for _, layout := range icsDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return name + ";VALUE=DATE:" + ts.Format(icsDate)
		}
	}
	return name + ":" + strings.Join(strings.Fields(value), " ")
}

// foldICS splits content lines longer than 75 octets, never inside a
// multi-byte character.
func foldICS(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line
	}
	var b strings.Builder
	width := limit
	for len(line) > width {
		cut := width
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		width = limit - 1
	}
	b.WriteString(line)
	return b.String()
}
