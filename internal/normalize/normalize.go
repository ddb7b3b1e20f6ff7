// Package normalize turns raw, possibly missing or mistyped cell values into clean typed values.
//
// Every function is total: malformed input is coerced to a default instead of
// returning an error, so a single bad cell never halts ingestion. A nil raw
// value means "no value".
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Keywords converts a raw keywords value into a list of trimmed keyword strings.
//
// Strings are decoded as JSON arrays (the format upstream scrapers write into a
// single CSV cell). Anything that isn't an array, or fails to decode, yields an
// empty list. The result is never nil.
func Keywords(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return keywordList(items)
	case []any:
		return keywordList(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []string{}
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return []string{}
		}
		items, ok := parsed.([]any)
		if !ok {
			return []string{}
		}
		return keywordList(items)
	default:
		return []string{}
	}
}

// keywordList drops falsy elements and stringifies and trims the rest.
func keywordList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !truthy(item) {
			continue
		}
		if kw := strings.TrimSpace(stringify(item)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Text normalizes free text such as titles and abstracts: runs of whitespace
// (newlines included) collapse to a single space and the ends are trimmed.
func Text(raw any) string {
	if raw == nil {
		return ""
	}
	return strings.Join(strings.Fields(stringify(raw)), " ")
}

// Int coerces raw into an integer, returning def when raw is missing or unparsable.
// Integral floats and numeric strings such as "2024" or "2024.0" are accepted;
// fractional values are not.
func Int(raw any, def int) int {
	switch v := raw.(type) {
	case nil:
		return def
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return floatToInt(v, def)
	case float32:
		return floatToInt(float64(v), def)
	case json.Number:
		return Int(v.String(), def)
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f, def)
		}
		return def
	default:
		return def
	}
}

// intLimit is 2^(bits-1) for the platform int, exactly representable as a float64.
var intLimit = math.Ldexp(1, strconv.IntSize-1)

// floatToInt accepts integral floats within the int range, the same range
// strconv.Atoi accepts for strings.
func floatToInt(f float64, def int) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= intLimit || f < -intLimit {
		return def
	}
	return int(f)
}

// Str stringifies and trims raw, returning def only when raw is missing.
func Str(raw any, def string) string {
	if raw == nil {
		return def
	}
	return strings.TrimSpace(stringify(raw))
}

// OptionalStr is Str with the empty string mapped to nil, for fields where
// "absent" must be distinguishable from a value.
func OptionalStr(raw any) *string {
	s := Str(raw, "")
	if s == "" {
		return nil
	}
	return &s
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
