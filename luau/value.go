package luau

import (
	"math"
	"strconv"
)

// ---------------------------------------------------------------------------
// Value representation
// ---------------------------------------------------------------------------

// Value is any runtime value: nil, bool, float64, string, Vector, *Table,
// *Closure, *Builtin, or *Buffer.
type Value = any

// Vector is a 4-wide float vector. In the 3-component configuration the
// fourth lane is always zero.
type Vector [4]float32

// Buffer is a mutable byte array value. The interpreter carries buffers
// opaquely; it provides no buffer operations of its own.
type Buffer []byte

// Builtin is a native function callable from bytecode.
type Builtin struct {
	Name string
	Fn   func(args ...Value) ([]Value, error)
}

// Kind classifies a Value. Classification is structural (a type switch),
// never a string comparison.
type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindTable
	KindFunction
	KindVector
	KindBuffer
	KindOther
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindBoolean:  "boolean",
	KindNumber:   "number",
	KindString:   "string",
	KindTable:    "table",
	KindFunction: "function",
	KindVector:   "vector",
	KindBuffer:   "buffer",
	KindOther:    "userdata",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "userdata"
}

// KindOf returns the classification of v.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case bool:
		return KindBoolean
	case float64:
		return KindNumber
	case string:
		return KindString
	case *Table:
		return KindTable
	case *Closure, *Builtin:
		return KindFunction
	case Vector:
		return KindVector
	case *Buffer:
		return KindBuffer
	default:
		return KindOther
	}
}

// truthy reports Luau truthiness: everything except nil and false.
func truthy(v Value) bool {
	return v != nil && v != false
}

// toNumber coerces v to a number the way the numeric for-loop setup does:
// numbers pass through, numeric strings parse.
func toNumber(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// numberToString formats a number for concatenation and error messages.
func numberToString(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', 14, 64)
}
