// Package schema maps domain values to document fields and back. Decoding
// never fails: a missing or malformed field is replaced by its named
// default and reported in Decoded.Defaulted.
package schema

import (
	"fmt"
	"math"
	"time"

	"pokeapp/internal/docstore"
	"pokeapp/internal/domain"
)

type Schema[T any] interface {
	Collection() string
	Encode(v T) docstore.Fields
	Decode(f docstore.Fields) Decoded[T]
}

type Decoded[T any] struct {
	Value     T
	Defaulted []domain.DecodeError
}

// Clean reports whether every field was read as stored.
func (d Decoded[T]) Clean() bool {
	return len(d.Defaulted) == 0
}

type reader struct {
	fields    docstore.Fields
	defaulted []domain.DecodeError
}

func newReader(f docstore.Fields) *reader {
	return &reader{fields: f}
}

func (r *reader) miss(field, reason string) {
	r.defaulted = append(r.defaulted, domain.DecodeError{Field: field, Reason: reason})
}

func (r *reader) String(field, fallback string) string {
	v, ok := r.fields[field]
	if !ok || v == nil {
		r.miss(field, "missing")
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		r.miss(field, fmt.Sprintf("expected string, got %T", v))
		return fallback
	}
	return s
}

func (r *reader) Int(field string, fallback int) int {
	v, ok := r.fields[field]
	if !ok || v == nil {
		r.miss(field, "missing")
		return fallback
	}

	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			r.miss(field, fmt.Sprintf("not an integer: %v", n))
			return fallback
		}
		// MaxInt64 rounds up to 2^63 as a float64
		if n < math.MinInt64 || n >= math.MaxInt64 {
			r.miss(field, fmt.Sprintf("out of range: %v", n))
			return fallback
		}
		return int(n)
	default:
		r.miss(field, fmt.Sprintf("expected integer, got %T", v))
		return fallback
	}
}

// NonNegativeInt is Int with negative values replaced by fallback.
func (r *reader) NonNegativeInt(field string, fallback int) int {
	n := r.Int(field, fallback)
	if n < 0 {
		r.miss(field, "negative")
		return fallback
	}
	return n
}

func (r *reader) Bool(field string, fallback bool) bool {
	v, ok := r.fields[field]
	if !ok || v == nil {
		r.miss(field, "missing")
		return fallback
	}
	b, ok := v.(bool)
	if !ok {
		r.miss(field, fmt.Sprintf("expected bool, got %T", v))
		return fallback
	}
	return b
}

// Time reads an RFC 3339 string; absent timestamps are the zero time.
func (r *reader) Time(field string) time.Time {
	s := r.String(field, "")
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		r.miss(field, "not an RFC 3339 timestamp")
		return time.Time{}
	}
	return t
}

func decoded[T any](v T, r *reader) Decoded[T] {
	return Decoded[T]{Value: v, Defaulted: r.defaulted}
}
