package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrAbsent is returned when a raw field carries no value at all.
	ErrAbsent = errors.New("value absent")
	// ErrNotFinite is returned for NaN or ±Inf values.
	ErrNotFinite = errors.New("value is not finite")
)

// Number is a numeric field exactly as a collaborator supplied it.
// It accepts JSON numbers, quoted strings and null, so a malformed value
// survives decoding and is judged by the normalizer instead of failing the
// whole batch. The empty string means absent.
type Number string

// NumberOf formats a float as a Number.
func NumberOf(f float64) Number {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// IntNumber formats an integer as a Number.
func IntNumber(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// Present reports whether the field carries any text.
func (n Number) Present() bool {
	return strings.TrimSpace(string(n)) != ""
}

// Float64 parses the value. "$1,234.50" and "2.5%" are accepted.
func (n Number) Float64() (float64, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, ErrAbsent
	}
	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotFinite
	}
	return f, nil
}

// UnmarshalJSON keeps the raw text of any scalar.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(rawScalar(b))
	return nil
}

// MarshalJSON writes numbers as JSON numbers, everything else as a string.
func (n Number) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Text is a categorical field as supplied (sentiment, direction, window...).
// Like Number it never fails decoding: a number or bool is kept as text.
type Text string

// UnmarshalJSON keeps the raw text of any scalar.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text(rawScalar(b))
	return nil
}

// String returns the trimmed text.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

func rawScalar(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return ""
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return string(b)
		}
		return strings.TrimSpace(s)
	}
	// number, bool, object, array: raw text, validated later
	return string(b)
}
