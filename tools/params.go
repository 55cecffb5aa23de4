package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceArgs validates raw model-provided arguments against the tool's
// parameter specs and returns a normalized copy: integers coerced from JSON
// numbers and digit strings, strings trimmed, unknown keys dropped, required
// keys enforced. senderName fills any missing FromSender parameter.
func CoerceArgs(t Tool, raw map[string]any, senderName string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, spec := range t.Params() {
		val, ok := raw[spec.Name]
		if !ok || isEmpty(val) {
			if spec.FromSender && strings.TrimSpace(senderName) != "" {
				out[spec.Name] = strings.TrimSpace(senderName)
				continue
			}
			if spec.Required {
				return nil, fmt.Errorf("missing required parameter %q", spec.Name)
			}
			continue
		}
		coerced, err := coerceValue(spec, val)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = coerced
	}
	return out, nil
}

func coerceValue(spec ParamSpec, val any) (any, error) {
	switch spec.Type {
	case TypeString:
		switch v := val.(type) {
		case string:
			return strings.TrimSpace(v), nil
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10), nil
			}
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		default:
			return nil, fmt.Errorf("parameter %q: expected string, got %T", spec.Name, val)
		}
	case TypeInt:
		switch v := val.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("parameter %q: expected integer, got %v", spec.Name, v)
			}
			return int(v), nil
		case int:
			return v, nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("parameter %q: expected integer, got %q", spec.Name, v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("parameter %q: expected integer, got %T", spec.Name, val)
		}
	default:
		return nil, fmt.Errorf("parameter %q: unknown type %q", spec.Name, spec.Type)
	}
}

func isEmpty(val any) bool {
	if val == nil {
		return true
	}
	if s, ok := val.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// IntArg reads an already-coerced integer argument.
func IntArg(params map[string]any, name string) int {
	if v, ok := params[name].(int); ok {
		return v
	}
	return 0
}

// StringArg reads an already-coerced string argument.
func StringArg(params map[string]any, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}
