package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func init() {
	Register(Codec{
		Format:      FormatJSON,
		Label:       "JSON",
		ContentType: "application/json",
		Extension:   ".json",
		Parse:       parseJSON,
		Serialize:   serializeJSON,
	})
}

type jsonObject = orderedmap.OrderedMap[string, any]

// parseJSON accepts an array of objects or a single object. Headers come
// from the first object's keys in document order.
func parseJSON(data string, _ Options) (*Table, error) {
	doc := strings.TrimSpace(decodeText(data))
	if doc == "" {
		return nil, malformed(FormatJSON, "empty document", nil)
	}

	var elems []json.RawMessage
	switch doc[0] {
	case '[':
		if err := json.Unmarshal([]byte(doc), &elems); err != nil {
			return nil, malformed(FormatJSON, "", err)
		}
	case '{':
		elems = []json.RawMessage{json.RawMessage(doc)}
	default:
		return nil, malformed(FormatJSON, "expected an array of objects or a single object", nil)
	}

	t := &Table{}
	extra := make(map[string]bool)
	var extraOrder []string
	for i, raw := range elems {
		obj, err := decodeJSONObject(raw)
		if err != nil {
			return nil, malformed(FormatJSON, fmt.Sprintf("element %d", i), err)
		}
		row := make(Row, obj.Len())
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			row[pair.Key] = stringifyJSON(pair.Value)
			if i == 0 {
				t.Headers = append(t.Headers, pair.Key)
			} else if !t.hasHeader(pair.Key) && !extra[pair.Key] {
				extra[pair.Key] = true
				extraOrder = append(extraOrder, pair.Key)
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if len(extraOrder) > 0 {
		t.warn("json: keys missing from the first object were dropped: " + strings.Join(extraOrder, ", "))
	}
	return t, nil
}

func decodeJSONObject(raw []byte) (*jsonObject, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("not an object")
	}
	obj := orderedmap.New[string, any]()
	if err := json.Unmarshal([]byte(trimmed), obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// stringifyJSON renders a decoded JSON value as a cell. Null becomes the
// empty string and nested values are kept as compact JSON.
func stringifyJSON(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func rowObject(row Row, headers []string) *orderedmap.OrderedMap[string, string] {
	obj := orderedmap.New[string, string](len(headers))
	for _, h := range headers {
		obj.Set(h, row[h])
	}
	return obj
}

// serializeJSON writes a pretty-printed array of objects whose keys follow
// the header order. All values are strings.
func serializeJSON(t *Table, _ Options) (string, error) {
	objs := make([]*orderedmap.OrderedMap[string, string], 0, len(t.Rows))
	for _, row := range t.Rows {
		objs = append(objs, rowObject(row, t.Headers))
	}
	out, err := json.MarshalIndent(objs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json serialize: %w", err)
	}
	return string(out), nil
}
