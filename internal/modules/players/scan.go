package players

import (
	"math"
	"strconv"
)

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// asString converts a scanned driver value to a string
func asString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

// asFloat converts a scanned driver value to a float
func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case []byte:
		f, err := strconv.ParseFloat(string(x), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func stringPtr(v interface{}) *string {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	return &s
}

func intPtr(v interface{}) *int {
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	i := int(math.Round(f))
	return &i
}
