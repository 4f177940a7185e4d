package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Format is a canonical format identifier.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
	FormatTSV      Format = "tsv"
	FormatKML      Format = "kml"
	FormatTXT      Format = "txt"
	FormatMarkdown Format = "markdown"
	FormatJSONL    Format = "jsonl"
	FormatICS      Format = "ics"
	FormatTOML     Format = "toml"
	FormatExcel    Format = "excel"
	FormatSQL      Format = "sql"
)

// ParseFunc turns text in one format into a Table.
type ParseFunc func(data string, opts Options) (*Table, error)

// SerializeFunc renders a Table as text in one format.
type SerializeFunc func(t *Table, opts Options) (string, error)

// Codec is the parser/serializer pair registered for a format.
type Codec struct {
	Format      Format
	Aliases     []string
	Label       string
	ContentType string
	Extension   string
	Parse       ParseFunc
	Serialize   SerializeFunc
}

var (
	registry   = make(map[Format]Codec)
	aliases    = make(map[string]Format)
	registryMu sync.RWMutex
)

// Register adds a codec to the registry.
// Panics if the format or one of its aliases is already registered.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[c.Format]; exists {
		panic(fmt.Sprintf("format already registered: %s", c.Format))
	}
	names := append([]string{string(c.Format)}, c.Aliases...)
	for _, name := range names {
		if owner, taken := aliases[normalizeName(name)]; taken {
			panic(fmt.Sprintf("format alias %q already registered by %s", name, owner))
		}
	}
	for _, name := range names {
		aliases[normalizeName(name)] = c.Format
	}

	registry[c.Format] = c
}

// Lookup returns the codec for a canonical format.
func Lookup(f Format) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[f]
	return c, ok
}

// ParseFormat resolves a case-insensitive identifier or alias to its
// canonical Format.
func ParseFormat(name string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if f, ok := aliases[normalizeName(name)]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Name: name}
}

// Codecs returns all registered codecs sorted by format name.
func Codecs() []Codec {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Codec, 0, len(registry))
	for _, c := range registry {
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Format < result[j].Format
	})

	return result
}

// FormatInfo describes a format for listings.
type FormatInfo struct {
	Name        Format   `json:"name"`
	Label       string   `json:"label"`
	Aliases     []string `json:"aliases,omitempty"`
	ContentType string   `json:"contentType"`
	Extension   string   `json:"extension"`
}

// Formats lists every registered format.
func Formats() []FormatInfo {
	codecs := Codecs()
	infos := make([]FormatInfo, len(codecs))
	for i, c := range codecs {
		infos[i] = FormatInfo{
			Name:        c.Format,
			Label:       c.Label,
			Aliases:     c.Aliases,
			ContentType: c.ContentType,
			Extension:   c.Extension,
		}
	}
	return infos
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
