package ingestion_engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CoerceText turns a chunk text of unknown shape into a string. Lists are
// joined with spaces, anything else uses its string form. The second
// result reports whether v was not already a string.
func CoerceText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, false
	case nil:
		return "", true
	case []string:
		return strings.Join(t, " "), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			s, _ := CoerceText(e)
			parts = append(parts, s)
		}
		return strings.Join(parts, " "), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
