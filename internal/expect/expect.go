// Package expect turns violated API contracts into typed errors.
//
// Every helper returns a *Failure when the observed value does not match,
// so callers can tell an assertion failure apart from transport or decoding
// errors with errors.As.
package expect

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Failure is an observed response that violates an expected contract.
type Failure struct {
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// Failf builds a Failure from a format string.
func Failf(format string, args ...any) *Failure {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// IsFailure reports whether err is, or wraps, an assertion failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Status checks that got is one of the expected status codes.
func Status(got int, want ...int) error {
	if slices.Contains(want, got) {
		return nil
	}
	if len(want) == 1 {
		return Failf("expected status %d, got %d", want[0], got)
	}
	codes := make([]string, len(want))
	for i, c := range want {
		codes[i] = fmt.Sprint(c)
	}
	return Failf("expected status in [%s], got %d", strings.Join(codes, ", "), got)
}

// Object checks that v is a JSON object.
func Object(v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, Failf("expected JSON object, got %s", kind(v))
	}
	return obj, nil
}

// Array checks that v is a JSON array.
func Array(v any) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, Failf("expected JSON array, got %s", kind(v))
	}
	return arr, nil
}

// NonEmpty checks that arr has at least one element.
func NonEmpty(arr []any, what string) error {
	if len(arr) == 0 {
		return Failf("%s should not be empty", what)
	}
	return nil
}

// Fields checks that obj carries every named key. Values may be null.
func Fields(obj map[string]any, what string, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Failf("%s missing field(s) %s", what, strings.Join(missing, ", "))
	}
	return nil
}

// Field checks that obj[field] exists and has the Go type T as produced by
// encoding/json (float64, string, bool, []any, map[string]any).
func Field[T any](obj map[string]any, field string) (T, error) {
	var zero T
	val, ok := obj[field]
	if !ok {
		return zero, Failf("missing field %q", field)
	}
	typed, ok := val.(T)
	if !ok {
		return zero, Failf("field %q: expected %T, got %s (%v)", field, zero, kind(val), val)
	}
	return typed, nil
}

// EachObject checks that every element of arr is an object carrying fields.
func EachObject(arr []any, what string, fields ...string) error {
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return Failf("%s[%d] should be object, got %s", what, i, kind(el))
		}
		if err := Fields(obj, fmt.Sprintf("%s[%d]", what, i), fields...); err != nil {
			return err
		}
	}
	return nil
}

// kind names the JSON type of a decoded value.
func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
