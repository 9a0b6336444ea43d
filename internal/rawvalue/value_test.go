package rawvalue

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_ZeroIsAbsent(t *testing.T) {
	var v Value
	assert.Equal(t, KindAbsent, v.Kind())
	assert.True(t, v.IsNil())
	assert.True(t, Null().IsNil())
	assert.False(t, String("").IsNil())
}

func TestRecord_GetAndHas(t *testing.T) {
	rec := Record{"City": String("Austin"), "Zip": Null()}

	assert.True(t, rec.Has("Zip"))
	assert.False(t, rec.Has("State"))
	assert.Equal(t, KindAbsent, rec.Get("State").Kind())
	assert.Equal(t, KindNull, rec.Get("Zip").Kind())

	var empty Record
	assert.Equal(t, KindAbsent, empty.Get("City").Kind())
}

func TestFloat_NonFinite(t *testing.T) {
	n, ok := Float(math.NaN()).AsNumber()
	require.True(t, ok)
	assert.True(t, n.NaN)
	assert.False(t, n.Finite())

	n, _ = Float(math.Inf(-1)).AsNumber()
	assert.True(t, n.Inf)
	assert.Equal(t, "-inf", n.Text)

	n, _ = Float(2.5).AsNumber()
	assert.True(t, n.Finite())
	assert.True(t, decimal.RequireFromString("2.5").Equal(n.Dec))
}

func TestNumberLiteral(t *testing.T) {
	v, ok := NumberLiteral("1234.50")
	require.True(t, ok)
	n, _ := v.AsNumber()
	assert.Equal(t, "1234.50", n.Text)

	_, ok = NumberLiteral("abc")
	assert.False(t, ok)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name  string
		input any
		kind  Kind
	}{
		{name: "nil", input: nil, kind: KindNull},
		{name: "string", input: "x", kind: KindString},
		{name: "bytes", input: []byte("x"), kind: KindBytes},
		{name: "bool", input: true, kind: KindBool},
		{name: "int", input: 7, kind: KindNumber},
		{name: "uint64", input: uint64(math.MaxUint64), kind: KindNumber},
		{name: "float", input: 1.5, kind: KindNumber},
		{name: "json number", input: json.Number("12.30"), kind: KindNumber},
		{name: "decimal", input: decimal.NewFromInt(3), kind: KindNumber},
		{name: "map", input: map[string]any{"a": 1}, kind: KindMap},
		{name: "list", input: []any{1, "a"}, kind: KindList},
		{name: "list of maps", input: []map[string]any{{"a": 1}}, kind: KindList},
		{name: "other", input: struct{}{}, kind: KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, FromAny(tt.input).Kind())
		})
	}
}

func TestFromAny_Uint64KeepsPrecision(t *testing.T) {
	n, _ := FromAny(uint64(math.MaxUint64)).AsNumber()
	assert.Equal(t, "18446744073709551615", n.Dec.String())
}

func TestFromNode(t *testing.T) {
	input := `
- City: Austin
  Tax_Rate: 1.10
  Bed: 3
  Pool: true
  Zip: null
  Notes: !!binary aGVsbG8=
  Valuation:
    - List_Price: 250000
  Big: 18446744073709551615
`
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(input), &doc))

	v, err := FromNode(&doc)
	require.NoError(t, err)
	items, ok := v.AsList()
	require.True(t, ok)
	require.Len(t, items, 1)

	rec, ok := items[0].AsMap()
	require.True(t, ok)

	rate, _ := rec.Get("Tax_Rate").AsNumber()
	assert.Equal(t, "1.10", rate.Text)
	pool, _ := rec.Get("Pool").AsBool()
	assert.True(t, pool)
	assert.Equal(t, KindNull, rec.Get("Zip").Kind())
	notes, ok := rec.Get("Notes").AsBytes()
	require.True(t, ok)
	assert.Equal(t, "hello", string(notes))
	big, _ := rec.Get("Big").AsNumber()
	assert.Equal(t, "18446744073709551615", big.Dec.String())

	nested, ok := rec.Get("Valuation").AsList()
	require.True(t, ok)
	require.Len(t, nested, 1)
}

func TestFromNode_Alias(t *testing.T) {
	input := `
base: &base {City: Austin}
copy: *base
`
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(input), &doc))

	v, err := FromNode(&doc)
	require.NoError(t, err)
	rec, _ := v.AsMap()
	copied, ok := rec.Get("copy").AsMap()
	require.True(t, ok)
	city, _ := copied.Get("City").AsString()
	assert.Equal(t, "Austin", city)
}

func TestInterface(t *testing.T) {
	v := FromAny(map[string]any{"a": []any{1, "x", nil, true}})

	encoded, err := json.Marshal(v.Interface())
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":["1","x",null,true]}`, string(encoded))
}
