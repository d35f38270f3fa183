package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Structured recovers a JSON value from raw model output.
// Priorities: whole text as JSON -> code fence JSON -> first greedy
// bracket/brace substring -> empty map sentinel. It never fails: the
// generation service is only instructed to emit pure JSON, not guaranteed.
func Structured(content string) any {
	content = strings.TrimSpace(content)

	if v, ok := tryJSON(content); ok {
		return v
	}

	if s := stripCodeFence(content); s != "" {
		if v, ok := tryJSON(s); ok {
			return v
		}
	}

	if s := firstJSONFragment(content); s != "" {
		if v, ok := tryJSON(s); ok {
			return v
		}
	}

	return map[string]any{}
}

func tryJSON(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

var rxFence = regexp.MustCompile("(?is)^```[a-z]*\\s*([\\s\\S]*?)\\s*```$")

func stripCodeFence(s string) string {
	m := rxFence.FindStringSubmatch(s)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// greedy, multi-line: the outermost array or object wins
var rxFragment = regexp.MustCompile(`(?s)\[.*\]|\{.*\}`)

func firstJSONFragment(s string) string {
	return rxFragment.FindString(s)
}

// Map narrows an extracted value to an object; nil if it is not one.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// Slice narrows an extracted value to an array; nil if it is not one.
func Slice(v any) []any {
	a, _ := v.([]any)
	return a
}

// String coerces a field of an extracted object to string.
// Numbers and booleans are formatted, anything else marshals back to JSON.
func String(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Strings coerces a field of an extracted object to a string slice.
func Strings(m map[string]any, key string) []string {
	a, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(a))
	for _, it := range a {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Number coerces a field of an extracted object to float64.
func Number(m map[string]any, key string) float64 {
	switch t := m[key].(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}
