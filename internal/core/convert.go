package core

// Convert converts data between two formats. Equal identifiers return the
// input unchanged without validating it.
func Convert(data, source, target string) (string, error) {
	res, err := ConvertWithOptions(data, source, target, Options{})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// ConvertWithReport is Convert plus row counts and parse warnings.
func ConvertWithReport(data, source, target string) (Result, error) {
	return ConvertWithOptions(data, source, target, Options{})
}

// ConvertWithOptions runs a conversion with serializer options.
//
// Identifiers are compared before alias resolution, so convert(x, "csv",
// "CSV") is a pass-through; aliases of the same format ("jsonl" and
// "ndjson") pass through as well.
func ConvertWithOptions(data, source, target string, opts Options) (Result, error) {
	if normalizeName(source) == normalizeName(target) && normalizeName(source) != "" {
		return passThrough(data, source), nil
	}

	src, err := ParseFormat(source)
	if err != nil {
		return Result{}, err
	}
	dst, err := ParseFormat(target)
	if err != nil {
		return Result{}, err
	}
	if src == dst {
		return passThrough(data, source), nil
	}

	t, err := Parse(data, src, opts)
	if err != nil {
		return Result{}, err
	}
	out, err := Serialize(t, dst, opts)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Output:   out,
		Format:   dst,
		Rows:     len(t.Rows),
		Columns:  len(t.Headers),
		Warnings: t.Warnings(),
	}, nil
}

func passThrough(data, source string) Result {
	f, _ := ParseFormat(source)
	return Result{Output: data, Format: f}
}

// Parse reads data in the given format into a Table.
func Parse(data string, f Format, opts Options) (*Table, error) {
	c, ok := Lookup(f)
	if !ok || c.Parse == nil {
		return nil, &UnsupportedFormatError{Name: string(f)}
	}
	return c.Parse(data, opts.withDefaults())
}

// Serialize renders a Table in the given format. Row cells outside the
// headers are ignored.
func Serialize(t *Table, f Format, opts Options) (string, error) {
	c, ok := Lookup(f)
	if !ok || c.Serialize == nil {
		return "", &UnsupportedFormatError{Name: string(f)}
	}
	return c.Serialize(t, opts.withDefaults())
}

// ToCSV converts data in any supported format to CSV.
func ToCSV(data, source string) (string, error) {
	return Convert(data, source, string(FormatCSV))
}

// FromCSV converts CSV text to any supported format.
func FromCSV(csvData, target string) (string, error) {
	return Convert(csvData, string(FormatCSV), target)
}
