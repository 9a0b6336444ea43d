// Package cleaning provides the scalar normalizers shared by every entity:
// loosely formatted strings, numbers and flags are coerced into canonical
// values, and anything that cannot be interpreted becomes nil.
package cleaning

import "strings"

// NullTokens lists the case-insensitive spellings that every normalizer
// treats as a missing value. Empty and whitespace-only strings are null too.
var NullTokens = map[string]struct{}{
	"":        {},
	"na":      {},
	"n/a":     {},
	"null":    {},
	"none":    {},
	"unknown": {},
}

// IsNullToken reports whether text is one of the null spellings once
// surrounding whitespace is removed.
func IsNullToken(text string) bool {
	_, ok := NullTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

var booleanTrue = map[string]bool{
	"y":    true,
	"yes":  true,
	"true": true,
	"1":    true,
}

var booleanFalse = map[string]bool{
	"n":     true,
	"no":    true,
	"false": true,
	"0":     true,
}

var numberWords = map[string]int64{
	"zero":   0,
	"one":    1,
	"two":    2,
	"three":  3,
	"four":   4,
	"five":   5,
	"six":    6,
	"seven":  7,
	"eight":  8,
	"nine":   9,
	"ten":    10,
	"eleven": 11,
	"twelve": 12,
}
