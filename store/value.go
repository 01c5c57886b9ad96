package store

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ValueKind enumerates the payload types the store can hold.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged variant. Object payloads keep the raw JSON text plus
// an xxhash digest so equality checks on large objects stay cheap.
type Value struct {
	kind ValueKind
	b    bool
	num  float64
	str  string
	hash uint64
}

func Undefined() Value { return Value{kind: KindUndefined} }
func Null() Value      { return Value{kind: KindNull} }

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func String(s string) Value  { return Value{kind: KindString, str: s} }

// Object wraps raw JSON text.
func Object(rawJSON string) Value {
	return Value{kind: KindObject, str: rawJSON, hash: xxhash.Sum64String(rawJSON)}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Bool() bool      { return v.b }
func (v Value) Number() float64 { return v.num }
func (v Value) Str() string     { return v.str }

// JSON returns the raw JSON text of an object value.
func (v Value) JSON() string { return v.str }

// Equal reports value identity per kind. Object values compare by their
// xxhash digest.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindObject:
		return v.hash == o.hash
	default:
		return false
	}
}

// Interface unwraps to a plain Go value, nil for undefined and null.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString, KindObject:
		return v.str
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindObject:
		return v.str
	default:
		return fmt.Sprintf("value(kind=%d)", v.kind)
	}
}
