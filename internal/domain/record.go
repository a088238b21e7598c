package domain

import (
	"fmt"
	"math"
	"time"
)

// TimeLayout is the timestamp format used throughout the war feed.
const TimeLayout = "20060102T150405.000Z"

// Record is one raw, already decoded payload object.
type Record map[string]any

type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// AsRecord is the only place a raw value is checked for being object-shaped.
func AsRecord(v any) (Record, error) {
	switch r := v.(type) {
	case Record:
		if r != nil {
			return r, nil
		}
	case map[string]any:
		if r != nil {
			return Record(r), nil
		}
	}
	return nil, fmt.Errorf("%w: got %T", ErrMalformedRecord, v)
}

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns nil when the key is absent, not numeric, fractional or out
// of range for int.
func (r Record) Int(key string) *int {
	var n int
	switch v := r[key].(type) {
	case int:
		n = v
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return nil
		}
		n = int(v)
	case float64:
		i, ok := wholeNumber(v)
		if !ok {
			return nil
		}
		n = i
	case number:
		if i, err := v.Int64(); err == nil {
			if i < math.MinInt || i > math.MaxInt {
				return nil
			}
			n = int(i)
			break
		}
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		i, ok := wholeNumber(f)
		if !ok {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

// wholeNumber converts f to int when it has no fractional part and fits.
func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt) rounds up to 2^63 on 64-bit platforms
	if f < float64(math.MinInt) || f >= float64(math.MaxInt) {
		return 0, false
	}
	return int(f), true
}

func (r Record) Float(key string) *float64 {
	var f float64
	switch v := r[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case number:
		var err error
		if f, err = v.Float64(); err != nil {
			return nil
		}
	default:
		return nil
	}
	return &f
}

// Time parses a feed timestamp. Unparseable values are treated as absent.
func (r Record) Time(key string) *time.Time {
	s := r.String(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// Record returns the nested object under key, or nil when the key is absent.
func (r Record) Record(key string) (Record, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	rec, err := AsRecord(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return rec, nil
}

// Records returns the nested array of objects under key. An absent key
// yields an empty, non-nil slice.
func (r Record) Records(key string) ([]Record, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return []Record{}, nil
	}

	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []Record:
		return list, nil
	case []map[string]any:
		out := make([]Record, len(list))
		for i, m := range list {
			out[i] = Record(m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w: expected array, got %T", key, ErrMalformedRecord, v)
	}

	out := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := AsRecord(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Strings returns the string entries of the array under key; other entries
// are skipped.
func (r Record) Strings(key string) ([]string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return []string{}, nil
	}

	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: %w: expected array, got %T", key, ErrMalformedRecord, v)
}
