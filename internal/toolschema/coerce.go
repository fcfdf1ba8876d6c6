package toolschema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// coerceInput returns a copy of input with string values best-effort
// converted toward each property's declared type. A value that does not
// clearly match is left untouched; coercion never drops or default-fills
// anything. The structural validation that follows is the authority on
// final correctness.
func coerceInput(schema *Schema, input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		prop, ok := schema.Properties[key]
		if !ok {
			out[key] = value
			continue
		}
		out[key] = coerceValue(prop, value)
	}
	return out
}

func coerceValue(schema *Schema, value any) any {
	if nested, ok := value.(map[string]any); ok && schema.Type == "object" && len(schema.Properties) > 0 {
		return coerceInput(schema, nested)
	}
	if items, ok := value.([]any); ok && schema.Type == "array" && schema.Items != nil {
		coerced := make([]any, len(items))
		for i, item := range items {
			coerced[i] = coerceValue(schema.Items, item)
		}
		return coerced
	}

	str, ok := value.(string)
	if !ok {
		return value
	}

	switch schema.Type {
	case "boolean":
		switch strings.ToLower(strings.TrimSpace(str)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	case "number":
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return parsed
		}
	case "integer":
		trimmed := strings.TrimSpace(str)
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(parsed, 0) && !math.IsNaN(parsed) &&
			parsed >= math.MinInt64 && parsed < math.MaxInt64 {
			return int(math.Floor(parsed))
		}
	case "object":
		var parsed any
		if err := json.Unmarshal([]byte(str), &parsed); err == nil {
			if obj, ok := parsed.(map[string]any); ok {
				return obj
			}
		}
	case "array":
		var parsed any
		if err := json.Unmarshal([]byte(str), &parsed); err == nil {
			if arr, ok := parsed.([]any); ok {
				return arr
			}
		}
	}

	return value
}
