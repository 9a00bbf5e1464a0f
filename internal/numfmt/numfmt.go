// Package numfmt renders counter values as display strings.
package numfmt

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Format holds the rendering options for a counter value.
type Format struct {
	Decimals  int
	Separator string
	Prefix    string
	Suffix    string
}

// Format rounds v half away from zero to f.Decimals places and renders it as
// prefix + integer[.fraction] + suffix. Rounding scales by 10^Decimals in
// float64, so a value stored just below a half rounds down. Non-finite values
// render as zero.
func (f Format) Format(v float64) string {
	places := f.Decimals
	if places < 0 {
		places = 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	fixed := decimal.NewFromFloat(round(v, places)).StringFixed(int32(places))

	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")
	if f.Separator != "" {
		intPart = Group(intPart, f.Separator)
	}

	var b strings.Builder
	b.WriteString(f.Prefix)
	b.WriteString(intPart)
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	b.WriteString(f.Suffix)
	return b.String()
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	r := math.Round(v*p) / p
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return v
	}
	return r
}

// Group inserts sep every three digits from the right of an integer string.
// A leading sign is kept in front of the first group.
func Group(digits, sep string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	if sep == "" || len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
