package core

import "strings"

func init() {
	Register(Codec{
		Format:      FormatExcel,
		Aliases:     []string{"xls"},
		Label:       "Excel (tab-separated)",
		ContentType: "application/vnd.ms-excel; charset=utf-8",
		Extension:   ".xls",
		Parse:       parseExcel,
		Serialize:   serializeExcel,
	})
}

// parseExcel reads the tab-separated text a spreadsheet places on the
// clipboard or writes as "Unicode Text". Binary workbooks are rejected.
func parseExcel(data string, _ Options) (*Table, error) {
	if isSpreadsheetContainer(data) {
		return nil, notImplemented(FormatExcel, "parse", "binary workbooks are not supported, save the sheet as tab-separated text")
	}

	data = decodeText(data)
	records, err := readDelimited(data, '\t', true)
	if err != nil {
		return nil, malformed(FormatExcel, "", err)
	}
	if len(records) < 2 {
		return nil, emptyResult(FormatExcel, "need a header row and at least one data row")
	}
	return tableFromRecords(records), nil
}

// serializeExcel writes tab-separated text with CRLF line endings. Cells
// containing a tab, quote or line break are quoted.
func serializeExcel(t *Table, _ Options) (string, error) {
	if len(t.Headers) == 0 {
		return "", nil
	}
	var b strings.Builder
	writeExcelRecord(&b, t.Headers)
	for i := range t.Rows {
		writeExcelRecord(&b, t.Record(i))
	}
	return b.String(), nil
}

func writeExcelRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\t')
		}
		if strings.ContainsAny(f, "\t\"\r\n") {
			f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		b.WriteString(f)
	}
	b.WriteString("\r\n")
}
