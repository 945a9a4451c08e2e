package workers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stringParam returns the trimmed string at key, or "" when absent or not a string.
func stringParam(params map[string]any, key string) string {
	raw, ok := params[key]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// positiveIntParam accepts JSON numbers, Go ints and numeric strings in (0, MaxInt32].
func positiveIntParam(params map[string]any, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}

	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%s must be <= %d, got %v", key, math.MaxInt32, v)
		}
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", key, v)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, raw)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%s must be > 0, got %d", key, n)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be <= %d, got %d", key, math.MaxInt32, n)
	}
	return int(n), nil
}

func feedbackSection(feedback string) string {
	if strings.TrimSpace(feedback) == "" {
		return ""
	}
	return "Previous feedback to address: " + feedback
}
