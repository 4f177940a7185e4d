package core

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText strips a leading byte order mark and repairs invalid UTF-8.
// UTF-16 input carrying a BOM, as written by spreadsheet exports, is
// transcoded to UTF-8.
func decodeText(s string) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.String(dec, s)
	if err != nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	return out
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// isSpreadsheetContainer reports whether data starts with the signature of an
// XLSX (zip) or legacy XLS (OLE2) workbook.
func isSpreadsheetContainer(data string) bool {
	head := []byte(data[:min(len(data), len(oleMagic))])
	return bytes.HasPrefix(head, zipMagic) || bytes.HasPrefix(head, oleMagic)
}

// splitLines splits on \n, \r\n or \r.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// nonBlankLines returns the trimmed lines of s that contain text.
func nonBlankLines(s string) []string {
	var out []string
	for _, line := range splitLines(s) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
