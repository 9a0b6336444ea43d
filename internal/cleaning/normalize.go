package cleaning

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jonathan/property-etl/internal/rawvalue"
)

// String trims and collapses whitespace. Byte input is decoded as UTF-8 with
// invalid sequences dropped; other non-null scalars are stringified.
func String(v rawvalue.Value) *string {
	switch v.Kind() {
	case rawvalue.KindString:
		s, _ := v.AsString()
		return normalizeText(s)
	case rawvalue.KindBytes:
		b, _ := v.AsBytes()
		return normalizeText(strings.ToValidUTF8(string(b), ""))
	case rawvalue.KindNumber:
		n, _ := v.AsNumber()
		return normalizeText(n.Text)
	case rawvalue.KindBool:
		b, _ := v.AsBool()
		text := strconv.FormatBool(b)
		return &text
	case rawvalue.KindMap, rawvalue.KindList:
		encoded, err := json.Marshal(v.Interface())
		if err != nil {
			return nil
		}
		text := string(encoded)
		return &text
	default:
		return nil
	}
}

func normalizeText(s string) *string {
	if IsNullToken(s) {
		return nil
	}
	text := strings.Join(strings.Fields(s), " ")
	if text == "" {
		return nil
	}
	return &text
}

// Bool coerces flag-like values. Numbers follow truthiness (NaN is nil);
// strings must be one of the recognised yes/no spellings.
func Bool(v rawvalue.Value) *bool {
	switch v.Kind() {
	case rawvalue.KindBool:
		b, _ := v.AsBool()
		return &b
	case rawvalue.KindNumber:
		n, _ := v.AsNumber()
		if n.NaN {
			return nil
		}
		b := n.Inf || !n.Dec.IsZero()
		return &b
	case rawvalue.KindString, rawvalue.KindBytes:
		text := String(v)
		if text == nil {
			return nil
		}
		lowered := strings.ToLower(*text)
		if booleanTrue[lowered] {
			b := true
			return &b
		}
		if booleanFalse[lowered] {
			b := false
			return &b
		}
		return nil
	default:
		return nil
	}
}

// Decimal coerces currency-like and numeric strings into an exact decimal.
// "$1,234.50" becomes 1234.50 and the words "zero" through "twelve" map to
// their integer value.
func Decimal(v rawvalue.Value) *decimal.Decimal {
	switch v.Kind() {
	case rawvalue.KindNumber:
		n, _ := v.AsNumber()
		if !n.Finite() {
			return nil
		}
		d := n.Dec
		return &d
	case rawvalue.KindBool:
		b, _ := v.AsBool()
		d := decimal.Zero
		if b {
			d = decimal.NewFromInt(1)
		}
		return &d
	case rawvalue.KindString, rawvalue.KindBytes:
		text := String(v)
		if text == nil {
			return nil
		}
		lowered := strings.ToLower(*text)
		if word, ok := numberWords[lowered]; ok {
			d := decimal.NewFromInt(word)
			return &d
		}
		candidate := extractNumber(lowered)
		if candidate == "" {
			return nil
		}
		d, err := decimal.NewFromString(candidate)
		if err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}

// extractNumber keeps digits, '-' and '.', then reduces repeated signs to the
// last one and repeated points to the first one.
func extractNumber(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			sb.WriteRune(r)
		}
	}
	cleaned := sb.String()

	if n := strings.Count(cleaned, "-"); n > 1 {
		cleaned = strings.Replace(cleaned, "-", "", n-1)
	}
	if strings.Count(cleaned, ".") > 1 {
		parts := strings.Split(cleaned, ".")
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
	}
	return cleaned
}

var (
	int64Upper = decimal.NewFromInt(math.MaxInt64).Add(decimal.New(5, -1))
	int64Lower = decimal.NewFromInt(math.MinInt64).Sub(decimal.New(5, -1))
)

// Int rounds the decimal form half away from zero. Values outside the int64
// range are treated as uninterpretable.
func Int(v rawvalue.Value) *int64 {
	d := Decimal(v)
	if d == nil {
		return nil
	}

	// The order of magnitude is checked first so a huge exponent never
	// expands into a full big.Int.
	var i int64
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	switch {
	case d.IsZero() || magnitude < 0:
		// |d| < 0.1
	case magnitude > 20:
		return nil
	default:
		if d.Cmp(int64Upper) >= 0 || d.Cmp(int64Lower) <= 0 {
			return nil
		}
		i = d.Round(0).IntPart()
	}
	return &i
}

// Float converts the decimal form to float64.
func Float(v rawvalue.Value) *float64 {
	d := Decimal(v)
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// Sequence wraps single values so callers can always iterate. Null and
// absent values, and strings that normalize to nil, yield an empty slice.
func Sequence(v rawvalue.Value) []rawvalue.Value {
	switch v.Kind() {
	case rawvalue.KindAbsent, rawvalue.KindNull:
		return nil
	case rawvalue.KindList:
		items, _ := v.AsList()
		return items
	case rawvalue.KindString, rawvalue.KindBytes:
		text := String(v)
		if text == nil {
			return nil
		}
		return []rawvalue.Value{rawvalue.String(*text)}
	default:
		return []rawvalue.Value{v}
	}
}

// Coalesce returns the first value that is neither nil nor a null token.
func Coalesce(values ...rawvalue.Value) rawvalue.Value {
	for _, v := range values {
		if v.IsNil() {
			continue
		}
		if s, ok := v.AsString(); ok && IsNullToken(s) {
			continue
		}
		return v
	}
	return rawvalue.Null()
}
