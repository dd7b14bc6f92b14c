package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is the canonical foreign-key representation. Backends serialize ids as
// numbers in some collections and strings in others; both decode to the same ID.
type ID string

// IDFromInt converts a numeric id.
func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool {
	return id == ""
}

// Int returns the numeric value of the id when it has one.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = normalizeID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", trimmed, err)
	}
	*id = normalizeID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers so the backend accepts them as
// primary keys.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, ok := id.Int(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func normalizeID(raw string) ID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IDFromInt(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return IDFromInt(int64(f))
	}
	return ID(s)
}

// ContainsID reports whether want appears in ids.
func ContainsID(ids []ID, want ID) bool {
	if want.IsZero() {
		return false
	}
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

const (
	// DateLayout is the calendar date format the backend emits.
	DateLayout = "2006-01-02"
	// CompactDateLayout is the calendar date format the backend accepts on case writes.
	CompactDateLayout = "20060102"
)

// Date is a calendar date without time of day. The zero value means absent.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD, YYYYMMDD and timestamps with a date prefix.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(CompactDateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", raw)
}

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Compact formats the date as YYYYMMDD, or "" when absent.
func (d Date) Compact() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(CompactDateLayout)
}

// SameDay reports whether d falls on the calendar day of t in t's location.
func (d Date) SameDay(t time.Time) bool {
	if d.IsZero() {
		return false
	}
	return d.String() == t.Format(DateLayout)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04Z07:00",
}

// Timestamp keeps the backend's raw representation next to the parsed instant.
// The raw string is authoritative for calendar-date comparisons; the parsed
// instant is used for ordering.
type Timestamp struct {
	Raw  string
	Time time.Time
}

// ParseTimestamp parses raw leniently. Unparseable values keep Raw with a zero Time.
func ParseTimestamp(raw string) Timestamp {
	s := strings.TrimSpace(raw)
	ts := Timestamp{Raw: s}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			ts.Time = t
			break
		}
	}
	return ts
}

// IsZero reports whether the timestamp is absent.
func (t Timestamp) IsZero() bool {
	return t.Raw == ""
}

// DatePrefix returns the YYYY-MM-DD prefix of the raw value.
func (t Timestamp) DatePrefix() string {
	if len(t.Raw) < len(DateLayout) {
		return t.Raw
	}
	return t.Raw[:len(DateLayout)]
}

// Before orders timestamps by instant. Unparseable values sort after every
// parsed one and among themselves by raw string.
func (t Timestamp) Before(other Timestamp) bool {
	parsed, otherParsed := !t.Time.IsZero(), !other.Time.IsZero()
	switch {
	case parsed && otherParsed:
		return t.Time.Before(other.Time)
	case parsed != otherParsed:
		return parsed
	default:
		return t.Raw < other.Raw
	}
}

// String returns the raw value.
func (t Timestamp) String() string {
	return t.Raw
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Raw)
}

// Decimal is a fixed point amount the backend may send as a string or a number.
type Decimal string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode decimal: %w", err)
		}
		*d = Decimal(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode decimal: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}
