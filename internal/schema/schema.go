// Package schema validates and coerces tool arguments against the minimal
// JSON-Schema-like parameter maps used by the tool package, and derives such
// maps from Go structs.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// ValidationError represents parameter validation errors with detailed
// information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// FromStruct derives a parameter schema map from a Go struct using
// jsonschema reflection. Field descriptions come from `jsonschema:"description=..."`
// tags; optional fields use pointer types or `json:",omitempty"`.
func FromStruct(v any) map[string]any {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(v)
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	delete(m, "$schema")
	delete(m, "$id")
	delete(m, "additionalProperties")
	if _, ok := m["properties"]; !ok {
		m["properties"] = map[string]any{}
	}
	return m
}

// Coerce returns a copy of args with every value converted to the primitive
// type its schema property declares, and declared defaults filled in for
// absent optional parameters. Missing required parameters or values that
// cannot be converted yield a *ValidationError.
//
// Model-produced arguments frequently arrive as strings even for numeric
// parameters, so string inputs are parsed for number/integer/boolean targets.
func Coerce(args map[string]any, schema map[string]any) (map[string]any, error) {
	properties, _ := schema["properties"].(map[string]any)

	out := make(map[string]any, len(args))
	for k, v := range args {
		propSchema, ok := properties[k].(map[string]any)
		if !ok {
			out[k] = v // undeclared extra field, passed through untouched
			continue
		}
		declared, _ := propSchema["type"].(string)
		cv, err := coerceValue(v, declared)
		if err != nil {
			return nil, &ValidationError{
				Field:   k,
				Value:   v,
				Message: err.Error(),
			}
		}
		out[k] = cv
	}

	for name, prop := range properties {
		propSchema, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		if _, present := out[name]; present {
			continue
		}
		if def, ok := propSchema["default"]; ok {
			declared, _ := propSchema["type"].(string)
			cv, err := coerceValue(def, declared)
			if err != nil {
				return nil, &ValidationError{
					Field:   name,
					Value:   def,
					Message: fmt.Sprintf("invalid default: %v", err),
				}
			}
			out[name] = cv
		}
	}

	for _, name := range requiredFields(schema) {
		if _, ok := out[name]; !ok {
			return nil, &ValidationError{
				Field:   name,
				Message: "required field is missing",
			}
		}
	}

	return out, nil
}

// requiredFields extracts the required list tolerating both []string and the
// []any shape produced by JSON decoding.
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func coerceValue(v any, declared string) (any, error) {
	switch declared {
	case "string":
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected type string, got %T", v)
	case "number":
		return toFloat(v)
	case "integer":
		return toInt(v)
	case "boolean":
		return toBool(v)
	case "":
		return v, nil
	default:
		// Object / array properties are passed through; the handler decodes them.
		return v, nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected type number, got %T", v)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got fractional number %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to integer", n.String())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to integer", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("expected type integer, got %T", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("cannot convert %q to boolean", b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("expected type boolean, got %T", v)
}
