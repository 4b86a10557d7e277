// Package fieldres resolves logical fields from loosely-shaped JSON
// objects. The backend names the same field inconsistently across
// endpoints (units vs Units vs credit_units, subject_id vs id), so each
// logical field declares an ordered fallback chain of keys evaluated by one
// pure helper instead of scattering coalescing expressions through
// business logic.
package fieldres

import (
	"fmt"
	"strconv"
)

// String returns the first present, non-empty value among keys, rendered as
// a string. JSON numbers format without a trailing ".0" so unit counts stay
// readable ("3", not "3.0").
func String(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := obj[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// Bool returns the first present boolean among keys, with ok reporting
// whether any key held one.
func Bool(obj map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		if v, found := obj[key].(bool); found {
			return v, true
		}
	}
	return false, false
}
