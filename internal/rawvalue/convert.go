package rawvalue

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FromAny converts decoded Go data (as produced by encoding/json, yaml.v3
// or hand-built test fixtures) into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case Record:
		return Map(t)
	case string:
		return String(t)
	case []byte:
		return Bytes(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return NumberOf(fromUint64(uint64(t)))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return NumberOf(fromUint64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		if n, ok := NumberLiteral(t.String()); ok {
			return n
		}
		return String(t.String())
	case decimal.Decimal:
		return NumberOf(t)
	case time.Time:
		return String(t.Format(time.RFC3339))
	case map[string]any:
		rec := make(Record, len(t))
		for k, item := range t {
			rec[k] = FromAny(item)
		}
		return Map(rec)
	case map[any]any:
		rec := make(Record, len(t))
		for k, item := range t {
			rec[fmt.Sprint(k)] = FromAny(item)
		}
		return Map(rec)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	case []map[string]any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	default:
		return String(fmt.Sprint(t))
	}
}

// FromNode converts a parsed YAML node. Numeric scalars keep their literal
// text so exact decimals survive the trip through the parser.
func FromNode(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null(), nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return FromNode(node.Content[0])
	case yaml.AliasNode:
		return FromNode(node.Alias)
	case yaml.MappingNode:
		rec := make(Record, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			item, err := FromNode(node.Content[i+1])
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", key, err)
			}
			rec[key] = item
		}
		return Map(rec), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for i, child := range node.Content {
			item, err := FromNode(child)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, item)
		}
		return List(items...), nil
	case yaml.ScalarNode:
		return scalarFromNode(node)
	default:
		return Null(), nil
	}
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			var decoded bool
			if err := node.Decode(&decoded); err != nil {
				return Value{}, fmt.Errorf("line %d: invalid bool %q: %w", node.Line, node.Value, err)
			}
			b = decoded
		}
		return Bool(b), nil
	case "!!int":
		if n, ok := NumberLiteral(node.Value); ok {
			return n, nil
		}
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return NumberOf(fromUint64(u)), nil
		}
		return String(node.Value), nil
	case "!!float":
		if n, ok := NumberLiteral(node.Value); ok {
			return n, nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return String(node.Value), nil
		}
		return Float(f), nil
	case "!!binary":
		var decoded string
		if err := node.Decode(&decoded); err != nil {
			return Value{}, fmt.Errorf("line %d: invalid binary scalar: %w", node.Line, err)
		}
		return Bytes([]byte(decoded)), nil
	default:
		return String(node.Value), nil
	}
}

func fromUint64(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}
