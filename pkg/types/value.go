package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies which variant a Value holds. The kinds mirror
// SQLite's five storage classes.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

// Value is the tagged union crossing the worker boundary. The zero value
// is Null. Display strings are a one-way projection; a Value is never
// reconstructed from its display form.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Null returns the SQL NULL value.
func Null() Value { return Value{} }

// Integer returns a 64-bit signed integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Real returns a 64-bit float value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Text returns a UTF-8 text value. Invalid byte sequences are replaced
// with U+FFFD so the value is always valid UTF-8.
func Text(s string) Value {
	return Value{kind: KindText, s: strings.ToValidUTF8(s, "�")}
}

// Blob returns a binary value. The byte slice is not copied.
func Blob(b []byte) Value { return Value{kind: KindBlob, b: b} }

// Kind reports which variant the value holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer payload; zero for other kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the real payload; zero for other kinds.
func (v Value) Float() float64 { return v.f }

// Bytes returns the blob payload; nil for other kinds.
func (v Value) Bytes() []byte { return v.b }

// String renders the value for display. NULL renders as the literal
// "NULL", blobs as 0x-prefixed lowercase hex.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return "0x" + hex.EncodeToString(v.b)
	}
	return ""
}

// Bind returns the value in the form expected by database/sql parameter
// binding.
func (v Value) Bind() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	}
	return nil
}

// FromColumn maps a value scanned from database/sql into a Value. The
// modernc driver yields nil, int64, float64, string, or []byte.
func FromColumn(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case int64:
		return Integer(x)
	case float64:
		return Real(x)
	case string:
		return Text(x)
	case []byte:
		b := make([]byte, len(x))
		copy(b, x)
		return Blob(b)
	case bool:
		if x {
			return Integer(1)
		}
		return Integer(0)
	default:
		return Text(fmt.Sprint(x))
	}
}

// ParseInput converts user-typed edit text into a typed Value: integer
// literal first, then float literal, otherwise text. An empty string is
// empty Text, never NULL; callers use Null() directly for that.
func ParseInput(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Integer(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Real(f)
	}
	return Text(s)
}
