package toolschema

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrorDetail is one structural violation, addressable by the path of the
// offending value.
type ErrorDetail struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
}

// Result is the outcome of validating one input object. CoercedInput is
// always populated, even on failure, so callers see exactly what the
// schema check ran against.
type Result struct {
	Valid        bool           `json:"valid"`
	Errors       []string       `json:"errors,omitempty"`
	ErrorDetails []ErrorDetail  `json:"error_details,omitempty"`
	CoercedInput map[string]any `json:"coerced_input,omitempty"`
}

func (r *Result) add(detail ErrorDetail) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", detail.Path, detail.Message))
	r.ErrorDetails = append(r.ErrorDetails, detail)
}

// Validate coerces the input toward the schema's declared types, then runs
// structural validation against the coerced form. Schemas are closed by
// default: unexpected top-level properties are rejected unless the schema
// opts in to AdditionalProperties.
func Validate(schema *Schema, input map[string]any) Result {
	result := Result{Valid: true}

	if schema == nil {
		result.CoercedInput = input
		return result
	}
	if input == nil {
		input = map[string]any{}
	}

	coerced := coerceInput(schema, input)
	result.CoercedInput = coerced

	validateObject(schema, coerced, "", &result)
	return result
}

func validateObject(schema *Schema, obj map[string]any, path string, result *Result) {
	for _, name := range schema.Required {
		if _, ok := obj[name]; !ok {
			result.add(ErrorDetail{
				Path:     joinPath(path, name),
				Message:  "missing required property",
				Expected: schemaType(schema.Properties[name]),
			})
		}
	}

	for name, value := range obj {
		prop, ok := schema.Properties[name]
		if !ok {
			if !schema.AdditionalProperties {
				result.add(ErrorDetail{
					Path:    joinPath(path, name),
					Message: "unexpected property",
					Actual:  value,
				})
			}
			continue
		}
		validateValue(prop, value, joinPath(path, name), result)
	}
}

func validateValue(schema *Schema, value any, path string, result *Result) {
	if value == nil {
		result.add(ErrorDetail{
			Path:     path,
			Message:  "value must not be null",
			Expected: schema.Type,
		})
		return
	}

	if schema.Type != "" && !typeMatches(schema.Type, value) {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("expected %s, got %s", schema.Type, jsonKind(value)),
			Expected: schema.Type,
			Actual:   value,
		})
		return
	}

	if len(schema.Enum) > 0 && !enumContains(schema.Enum, value) {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("value is not one of the allowed values %v", schema.Enum),
			Expected: fmt.Sprintf("one of %v", schema.Enum),
			Actual:   value,
		})
		return
	}

	switch schema.Type {
	case "string":
		validateString(schema, value.(string), path, result)
	case "number", "integer":
		validateNumber(schema, value, path, result)
	case "object":
		if obj, ok := value.(map[string]any); ok {
			validateObject(schema, obj, path, result)
		}
	case "array":
		if schema.Items != nil {
			for i, item := range value.([]any) {
				validateValue(schema.Items, item, fmt.Sprintf("%s[%d]", path, i), result)
			}
		}
	}
}

func validateString(schema *Schema, value, path string, result *Result) {
	length := utf8.RuneCountInString(value)
	if schema.MinLength != nil && length < *schema.MinLength {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("length %d is below minimum %d", length, *schema.MinLength),
			Expected: fmt.Sprintf("minLength %d", *schema.MinLength),
			Actual:   value,
		})
	}
	if schema.MaxLength != nil && length > *schema.MaxLength {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("length %d exceeds maximum %d", length, *schema.MaxLength),
			Expected: fmt.Sprintf("maxLength %d", *schema.MaxLength),
			Actual:   value,
		})
	}

	if schema.Pattern != "" {
		re, err := regexp.Compile(schema.Pattern)
		if err != nil {
			result.add(ErrorDetail{
				Path:    path,
				Message: fmt.Sprintf("schema pattern is invalid: %v", err),
			})
		} else if !re.MatchString(value) {
			result.add(ErrorDetail{
				Path:     path,
				Message:  fmt.Sprintf("value does not match pattern %q", schema.Pattern),
				Expected: schema.Pattern,
				Actual:   value,
			})
		}
	}

	if schema.Format != "" && !formatMatches(schema.Format, value) {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("value is not a valid %s", schema.Format),
			Expected: schema.Format,
			Actual:   value,
		})
	}
}

func validateNumber(schema *Schema, value any, path string, result *Result) {
	num := toFloat(value)
	if schema.Minimum != nil && num < *schema.Minimum {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("value %v is below minimum %v", num, *schema.Minimum),
			Expected: fmt.Sprintf("minimum %v", *schema.Minimum),
			Actual:   value,
		})
	}
	if schema.Maximum != nil && num > *schema.Maximum {
		result.add(ErrorDetail{
			Path:     path,
			Message:  fmt.Sprintf("value %v exceeds maximum %v", num, *schema.Maximum),
			Expected: fmt.Sprintf("maximum %v", *schema.Maximum),
			Actual:   value,
		})
	}
}

func typeMatches(declared string, value any) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		return isNumeric(value)
	case "integer":
		if !isNumeric(value) {
			return false
		}
		f := toFloat(value)
		return f == math.Trunc(f)
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	default:
		return true
	}
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// jsonKind names the JSON type of a Go value for error messages.
func jsonKind(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		if isNumeric(value) {
			return "number"
		}
		return reflect.TypeOf(value).String()
	}
}

func enumContains(enum []any, value any) bool {
	for _, candidate := range enum {
		if reflect.DeepEqual(candidate, value) {
			return true
		}
		// JSON decoding yields float64 for all numbers; tolerate enums
		// authored with Go ints.
		if isNumeric(candidate) && isNumeric(value) && toFloat(candidate) == toFloat(value) {
			return true
		}
	}
	return false
}

func formatMatches(format, value string) bool {
	switch format {
	case "date-time":
		_, err := time.Parse(time.RFC3339, value)
		return err == nil
	case "date":
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	case "email":
		_, err := mail.ParseAddress(value)
		return err == nil
	case "uri":
		u, err := url.Parse(value)
		return err == nil && u.Scheme != ""
	case "path":
		return value != "" && !strings.ContainsRune(value, '\x00')
	default:
		// Unknown formats are not enforced.
		return true
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func schemaType(s *Schema) string {
	if s == nil {
		return ""
	}
	return s.Type
}
