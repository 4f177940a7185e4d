package core

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

func init() {
	Register(Codec{
		Format:      FormatYAML,
		Aliases:     []string{"yml"},
		Label:       "YAML",
		ContentType: "application/yaml; charset=utf-8",
		Extension:   ".yaml",
		Parse:       parseYAML,
		Serialize:   serializeYAML,
	})
}

// parseYAML reads a sequence of flat mappings (or a single mapping). Input
// the YAML decoder rejects is scanned line by line for "- key: value" items
// instead, so it never fails.
func parseYAML(data string, _ Options) (*Table, error) {
	data = decodeText(data)

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(data), &doc); err == nil {
		if t, ok := tableFromYAML(&doc); ok {
			return t, nil
		}
	}

	t := scanYAMLLines(data)
	t.warn("yaml: document is not a list of mappings, fell back to line scanning")
	return t, nil
}

func tableFromYAML(doc *yaml.Node) (*Table, bool) {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &Table{}, true
	}
	root := doc.Content[0]

	var items []*yaml.Node
	switch root.Kind {
	case yaml.SequenceNode:
		items = root.Content
	case yaml.MappingNode:
		items = []*yaml.Node{root}
	default:
		return nil, false
	}

	t := &Table{}
	for _, item := range items {
		if item.Kind != yaml.MappingNode {
			return nil, false
		}
		row := make(Row, len(item.Content)/2)
		for i := 0; i+1 < len(item.Content); i += 2 {
			key := item.Content[i].Value
			row[key] = yamlCell(item.Content[i+1])
			t.addHeader(key)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

// yamlCell renders a value node as a cell. Nested collections are kept in
// flow style.
func yamlCell(n *yaml.Node) string {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	}
	flow := *n
	flow.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func scanYAMLLines(data string) *Table {
	t := &Table{}
	var row Row
	for _, line := range nonBlankLines(data) {
		if strings.HasPrefix(line, "#") || line == "---" {
			continue
		}
		if line == "-" || strings.HasPrefix(line, "- ") {
			row = make(Row)
			t.Rows = append(t.Rows, row)
			line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
			if line == "" {
				continue
			}
		}
		if row == nil {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = unquoteYAML(strings.TrimSpace(key))
		row[key] = unquoteYAML(strings.TrimSpace(value))
		t.addHeader(key)
	}
	return t
}

func unquoteYAML(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func yamlString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// serializeYAML writes a block sequence of mappings. Values are tagged as
// strings so "30" or "true" keep their type on the way back in.
func serializeYAML(t *Table, _ Options) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for j, v := range t.Record(i) {
			m.Content = append(m.Content, yamlString(t.Headers[j]), yamlString(v))
		}
		seq.Content = append(seq.Content, m)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return "", fmt.Errorf("yaml serialize: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("yaml serialize: %w", err)
	}
	return buf.String(), nil
}
