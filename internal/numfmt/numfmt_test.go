package numfmt

import (
	"math"
	"strings"
	"testing"
)

func TestFormatExamples(t *testing.T) {
	cases := []struct {
		name string
		f    Format
		v    float64
		want string
	}{
		{"half rounds away from zero", Format{Separator: ","}, 1234.5, "1,235"},
		{"carry into integer part", Format{Decimals: 2}, 999.999, "1000.00"},
		{"negative with affixes", Format{Decimals: 1, Prefix: "$", Suffix: "/mo"}, -42, "$-42.0/mo"},
		{"zero with suffix", Format{Suffix: "%"}, 0, "0%"},
		{"negative half", Format{}, -2.5, "-3"},
		{"zero padded fraction", Format{Decimals: 3}, 1.5, "1.500"},
		{"truncated repeating value", Format{Decimals: 2}, 33.333, "33.33"},
		{"stored just below half", Format{Decimals: 2}, 1.005, "1.00"},
		{"stored just below half small", Format{Decimals: 2}, 0.285, "0.28"},
		{"stored just below half carry", Format{Decimals: 2}, 1.255, "1.25"},
		{"exact half at places", Format{Decimals: 1}, 0.25, "0.3"},
		{"huge value keeps precision", Format{Decimals: 20}, 1e300, "1" + strings.Repeat("0", 300) + "." + strings.Repeat("0", 20)},
		{"negative rounds to zero", Format{}, -0.4, "0"},
		{"millions", Format{Separator: " "}, 1234567, "1 234 567"},
		{"negative grouping", Format{Separator: ","}, -1234567.891, "-1,234,568"},
		{"grouping with fraction", Format{Decimals: 2, Separator: "."}, 12345.678, "12.345.68"},
		{"multi-rune separator", Format{Separator: "'"}, 10000, "10'000"},
		{"not a number", Format{Decimals: 1, Suffix: "x"}, math.NaN(), "0.0x"},
		{"negative decimals treated as zero", Format{Decimals: -1}, 7.6, "8"},
	}
	for _, tc := range cases {
		if got := tc.f.Format(tc.v); got != tc.want {
			t.Fatalf("%s: Format(%v) = %q, want %q", tc.name, tc.v, got, tc.want)
		}
	}
}

func TestSeparatorThreshold(t *testing.T) {
	f := Format{Separator: ","}
	if got := f.Format(999); got != "999" {
		t.Fatalf("expected no separator for three digits, got %q", got)
	}
	if got := f.Format(1000); got != "1,000" {
		t.Fatalf("expected one separator for four digits, got %q", got)
	}
	if got := f.Format(-999); got != "-999" {
		t.Fatalf("sign must not count as a digit, got %q", got)
	}
}

func TestFormatIsStable(t *testing.T) {
	f := Format{Decimals: 2, Separator: ",", Prefix: "~"}
	first := f.Format(98765.4321)
	for i := 0; i < 10; i++ {
		if got := f.Format(98765.4321); got != first {
			t.Fatalf("unstable output: %q vs %q", got, first)
		}
	}
	if first != "~98,765.43" {
		t.Fatalf("unexpected output %q", first)
	}
}

func TestGroup(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"1":       "1",
		"123":     "123",
		"1234":    "1_234",
		"123456":  "123_456",
		"1234567": "1_234_567",
		"-12345":  "-12_345",
		"+1000":   "+1_000",
	}
	for in, want := range cases {
		if got := Group(in, "_"); got != want {
			t.Fatalf("Group(%q) = %q, want %q", in, got, want)
		}
	}
}
