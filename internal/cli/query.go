package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/jomardyan/ToolBox/internal/core"
)

// applyQuery runs a jq expression over JSON or JSONL output. JSON output is
// queried as a single array; JSONL lines are gathered into one array too, so
// ".[] | select(.age > \"30\")" works for both. Results are written in the
// target's style: indented for JSON, one compact value per line for JSONL.
func applyQuery(expr, output string, target core.Format) (string, error) {
	if target != core.FormatJSON && target != core.FormatJSONL {
		return "", fmt.Errorf("--query needs json or jsonl output, got %s", target)
	}

	parsed, err := gojq.Parse(expr)
	if err != nil {
		return "", fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return "", fmt.Errorf("invalid query: %w", err)
	}

	input, err := queryInput(output, target)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if target == core.FormatJSON {
		enc.SetIndent("", "  ")
	}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if qerr, isErr := v.(error); isErr {
			return "", fmt.Errorf("query error: %w", qerr)
		}
		if err := enc.Encode(v); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// queryInput decodes serialized output into the []any gojq expects.
func queryInput(output string, target core.Format) (any, error) {
	if target == core.FormatJSON {
		var v any
		if err := json.Unmarshal([]byte(output), &v); err != nil {
			return nil, fmt.Errorf("decode json for query: %w", err)
		}
		return v, nil
	}

	items := []any{}
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("decode jsonl for query: %w", err)
		}
		items = append(items, v)
	}
	return items, nil
}
