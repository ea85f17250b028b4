package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one row returned by a list endpoint. The backend owns the schema.
type Record map[string]any

// ID returns the record identifier, preferring the Mongo-style "_id".
func (r Record) ID() string {
	for _, k := range []string{"_id", "id"} {
		if v := r.Field(k); v != "" {
			return v
		}
	}
	return ""
}

// Field renders the named value as a string. Dotted names walk nested objects.
func (r Record) Field(name string) string {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}
	return formatValue(cur)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
