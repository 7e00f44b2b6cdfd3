// Package normalize coerces loosely typed request payloads into MetricRecords.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/basal/internal/domain/model"
)

// Payload field names.
const (
	FieldWeight = "weight"
	FieldHeight = "height"
	FieldAge    = "age"
	FieldTime   = "time"
	FieldBody   = "body"
)

// ErrValidation is the sentinel kind matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or non-coercible payload field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Decode reads a single JSON object from r and normalizes it. Numbers are
// decoded as json.Number so integer fields keep their exact value.
func Decode(r io.Reader) (model.MetricRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		var syntaxErr *json.SyntaxError
		switch {
		case errors.Is(err, io.EOF):
			return model.MetricRecord{}, invalid(FieldBody, "empty request body")
		case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
			return model.MetricRecord{}, invalid(FieldBody, "malformed json: %v", err)
		default:
			// Transport failures such as body size limits keep their cause.
			return model.MetricRecord{}, fmt.Errorf("read body: %w", err)
		}
	}
	if err := ensureEOF(dec); err != nil {
		return model.MetricRecord{}, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.MetricRecord{}, invalid(FieldBody, "expected a json object, got %s", kindOf(raw))
	}
	return Payload(obj)
}

// ensureEOF rejects any JSON value or garbage after the first one.
func ensureEOF(dec *json.Decoder) error {
	err := dec.Decode(&struct{}{})
	if errors.Is(err, io.EOF) {
		return nil
	}
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
		return fmt.Errorf("read body: %w", err)
	}
	return invalid(FieldBody, "unexpected data after json object")
}

// Payload extracts weight and height as floats and age and time as ints.
// Extra keys are ignored. The first failing field is reported.
func Payload(data map[string]any) (model.MetricRecord, error) {
	var (
		rec model.MetricRecord
		err error
	)
	if rec.Weight, err = floatField(data, FieldWeight); err != nil {
		return model.MetricRecord{}, err
	}
	if rec.Height, err = floatField(data, FieldHeight); err != nil {
		return model.MetricRecord{}, err
	}
	if rec.Age, err = intField(data, FieldAge); err != nil {
		return model.MetricRecord{}, err
	}
	if rec.Time, err = intField(data, FieldTime); err != nil {
		return model.MetricRecord{}, err
	}
	return rec, nil
}

func floatField(data map[string]any, key string) (float64, error) {
	v, ok := data[key]
	if !ok {
		return 0, invalid(key, "missing field")
	}

	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if isHexFloat(s) {
			return 0, invalid(key, "cannot convert %q to float", t)
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, invalid(key, "expected a number, got %s", kindOf(v))
	}
	if err != nil {
		return 0, invalid(key, "cannot convert %q to float", fmt.Sprint(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(key, "must be finite")
	}
	return f, nil
}

func intField(data map[string]any, key string) (int, error) {
	v, ok := data[key]
	if !ok {
		return 0, invalid(key, "missing field")
	}

	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.Atoi(t.String()); err == nil {
			return i, nil
		}
		// JSON floats such as 60.0 or 1e2 truncate toward zero.
		f, err := t.Float64()
		if err != nil {
			return 0, invalid(key, "cannot convert %q to int", t.String())
		}
		return truncate(key, f)
	case float64:
		return truncate(key, t)
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, invalid(key, "cannot convert %q to int", t)
		}
		return i, nil
	default:
		return 0, invalid(key, "expected an integer, got %s", kindOf(v))
	}
}

// isHexFloat reports whether s uses the 0x prefix that ParseFloat accepts
// but decimal form inputs never carry.
func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func truncate(key string, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(key, "must be finite")
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, invalid(key, "out of range")
	}
	return int(t), nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
