package core

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

func init() {
	Register(Codec{
		Format:      FormatKML,
		Label:       "KML placemarks",
		ContentType: "application/vnd.google-earth.kml+xml",
		Extension:   ".kml",
		Parse:       parseKML,
		Serialize:   serializeKML,
	})
}

var (
	kmlPlacemark   = regexp.MustCompile(`(?s)<Placemark(?:\s[^>]*)?>(.*?)</Placemark\s*>`)
	kmlName        = regexp.MustCompile(`(?s)<name(?:\s[^>]*)?>(.*?)</name\s*>`)
	kmlCoordinates = regexp.MustCompile(`(?s)<coordinates(?:\s[^>]*)?>(.*?)</coordinates\s*>`)
	kmlCDATA       = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

var kmlHeaders = []string{"name", "longitude", "latitude"}

// parseKML extracts one row per <Placemark> that has coordinates. Only the
// first coordinate tuple of each placemark is used.
func parseKML(data string, _ Options) (*Table, error) {
	t := NewTable(kmlHeaders)
	for _, m := range kmlPlacemark.FindAllStringSubmatch(decodeText(data), -1) {
		body := m[1]
		coords := kmlCoordinates.FindStringSubmatch(body)
		if coords == nil {
			continue
		}
		tuple := strings.Fields(coords[1])
		if len(tuple) == 0 {
			continue
		}
		parts := strings.Split(tuple[0], ",")
		if len(parts) < 2 {
			continue
		}

		name := ""
		if n := kmlName.FindStringSubmatch(body); n != nil {
			name = kmlText(n[1])
		}
		t.AddRecord([]string{name, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
	}

	if len(t.Rows) == 0 {
		return nil, emptyResult(FormatKML, "no placemarks with coordinates found")
	}
	return t, nil
}

func kmlText(s string) string {
	if m := kmlCDATA.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

// kmlColumns locates the name and coordinate columns of a table.
type kmlColumns struct {
	name, lng, lat, coords string
}

func findKMLColumns(headers []string) kmlColumns {
	var c kmlColumns
	c.name = findColumn(headers, "name", "title", "label")
	c.lng = findColumn(headers, "longitude", "lng", "lon", "long", "x")
	c.lat = findColumn(headers, "latitude", "lat", "y")
	c.coords = findColumn(headers, "coordinates", "coords", "point")
	if c.name == "" {
		for _, h := range headers {
			if h != c.lng && h != c.lat && h != c.coords {
				c.name = h
				break
			}
		}
	}
	return c
}

// findColumn returns the first header matching one of the candidates,
// ignoring case.
func findColumn(headers []string, candidates ...string) string {
	for _, cand := range candidates {
		for _, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), cand) {
				return h
			}
		}
	}
	return ""
}

// serializeKML writes a KML 2.2 document with one Point placemark per row.
// Columns other than name and coordinates go into the description.
func serializeKML(t *Table, _ Options) (string, error) {
	cols := findKMLColumns(t.Headers)
	if len(t.Rows) > 0 && cols.coords == "" && (cols.lng == "" || cols.lat == "") {
		return "", &FormatError{
			Kind:   ErrMalformedInput,
			Format: FormatKML,
			Op:     "serialize",
			Msg:    "need longitude and latitude columns (or a coordinates column)",
		}
	}
	used := []string{cols.name, cols.lng, cols.lat, cols.coords}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2">` + "\n")
	b.WriteString("  <Document>\n")
	for _, row := range t.Rows {
		point := row[cols.coords]
		if cols.lng != "" && cols.lat != "" {
			point = strings.TrimSpace(row[cols.lng]) + "," + strings.TrimSpace(row[cols.lat])
		}
		if strings.TrimSpace(point) == "" || point == "," {
			continue
		}

		b.WriteString("    <Placemark>\n")
		fmt.Fprintf(&b, "      <name>%s</name>\n", xmlEscape(row[cols.name]))
		var desc []string
		for _, h := range t.Headers {
			if !slices.Contains(used, h) && row[h] != "" {
				desc = append(desc, h+": "+row[h])
			}
		}
		if len(desc) > 0 {
			fmt.Fprintf(&b, "      <description>%s</description>\n", xmlEscape(strings.Join(desc, "\n")))
		}
		fmt.Fprintf(&b, "      <Point><coordinates>%s</coordinates></Point>\n", xmlEscape(strings.TrimSpace(point)))
		b.WriteString("    </Placemark>\n")
	}
	b.WriteString("  </Document>\n</kml>\n")
	return b.String(), nil
}
