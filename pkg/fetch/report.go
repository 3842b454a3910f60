package fetch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// reportDelimiter separates progress output from the final JSON dump.
var reportDelimiter = strings.Repeat("=", 50)

// WriteReport writes the delimiter line and the pretty-printed JSON dump of
// the result with 2-space indentation.
func WriteReport(w io.Writer, result Result) error {
	if _, err := fmt.Fprintf(w, "\n%s\nRESULT:\n", reportDelimiter); err != nil {
		return fmt.Errorf("write delimiter: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

// coerceMap normalizes a raw serialization so the final JSON dump cannot
// fail: values without a native JSON representation are replaced by their
// string form.
func coerceMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = coerceValue(v)
	}
	return out
}

func coerceValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return val
	case map[string]any:
		return coerceMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = coerceValue(item)
		}
		return out
	case error:
		return val.Error()
	default:
		if _, err := json.Marshal(val); err != nil {
			return fmt.Sprint(val)
		}
		return val
	}
}
