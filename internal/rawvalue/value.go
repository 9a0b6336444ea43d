// Package rawvalue models untyped source values as a tagged variant so that
// normalizers can switch on the kind instead of inspecting Go types.
package rawvalue

import (
	"math"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindBytes
	KindNumber
	KindBool
	KindMap
	KindList
)

var kindNames = map[Kind]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindString: "string",
	KindBytes:  "bytes",
	KindNumber: "number",
	KindBool:   "bool",
	KindMap:    "map",
	KindList:   "list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Number is a numeric scalar. Text keeps the literal as it appeared in the
// source so stringification does not drop trailing zeros or reformat it.
type Number struct {
	Dec  decimal.Decimal
	Text string
	NaN  bool
	Inf  bool
}

// Finite reports whether the number carries a usable decimal value.
func (n Number) Finite() bool {
	return !n.NaN && !n.Inf
}

// Value is a single raw field value. The zero Value is absent.
type Value struct {
	kind    Kind
	text    string
	raw     []byte
	num     Number
	boolean bool
	record  Record
	list    []Value
}

// Record is one raw source object keyed by source field name.
type Record map[string]Value

// Get returns the value stored under key, or an absent Value.
func (r Record) Get(key string) Value {
	if r == nil {
		return Absent()
	}
	v, ok := r[key]
	if !ok {
		return Absent()
	}
	return v
}

// Has reports whether key is present, including explicit nulls.
func (r Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r[key]
	return ok
}

func Absent() Value { return Value{kind: KindAbsent} }

func Null() Value { return Value{kind: KindNull} }

func String(s string) Value { return Value{kind: KindString, text: s} }

func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

func Map(r Record) Value {
	if r == nil {
		r = Record{}
	}
	return Value{kind: KindMap, record: r}
}

func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// NumberOf wraps an already-parsed decimal.
func NumberOf(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: Number{Dec: d, Text: d.String()}}
}

// NumberLiteral parses a numeric literal, keeping its original text.
// It returns false when the literal is not a finite decimal.
func NumberLiteral(text string) (Value, bool) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, false
	}
	return Value{kind: KindNumber, num: Number{Dec: d, Text: text}}, true
}

// Int wraps an integer.
func Int(i int64) Value {
	return NumberOf(decimal.NewFromInt(i))
}

// Float wraps a float, flagging NaN and infinities instead of failing.
func Float(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Value{kind: KindNumber, num: Number{NaN: true, Text: "nan"}}
	case math.IsInf(f, 0):
		text := "inf"
		if f < 0 {
			text = "-inf"
		}
		return Value{kind: KindNumber, num: Number{Inf: true, Text: text}}
	}
	return NumberOf(decimal.NewFromFloat(f))
}

func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the value is absent or an explicit null.
func (v Value) IsNil() bool {
	return v.kind == KindAbsent || v.kind == KindNull
}

func (v Value) AsString() (string, bool) {
	return v.text, v.kind == KindString
}

func (v Value) AsBytes() ([]byte, bool) {
	return v.raw, v.kind == KindBytes
}

func (v Value) AsNumber() (Number, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

func (v Value) AsMap() (Record, bool) {
	return v.record, v.kind == KindMap
}

func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Interface converts the value back into plain Go data, mainly for logging
// and JSON encoding of raw payloads.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindBytes:
		return string(v.raw)
	case KindNumber:
		return v.num.Text
	case KindBool:
		return v.boolean
	case KindMap:
		out := make(map[string]any, len(v.record))
		for k, item := range v.record {
			out[k] = item.Interface()
		}
		return out
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}
