package numparse

import (
	"math"
	"testing"
)

func TestParse_Integers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		end   int
	}{
		{"zero", "0", 0, 1},
		{"positive", "123", 123, 3},
		{"negative", "-456", -456, 4},
		{"max int64", "9223372036854775807", math.MaxInt64, 19},
		{"min int64", "-9223372036854775808", math.MinInt64, 20},
		{"trailing garbage ignored by caller", "42,", 42, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if res.Kind != KindInt64 {
				t.Fatalf("Parse(%q) Kind = %v, want KindInt64", tt.input, res.Kind)
			}
			if res.I64 != tt.want {
				t.Errorf("Parse(%q) I64 = %d, want %d", tt.input, res.I64, tt.want)
			}
			if res.End != tt.end {
				t.Errorf("Parse(%q) End = %d, want %d", tt.input, res.End, tt.end)
			}
		})
	}
}

func TestParse_Uint64Overflow(t *testing.T) {
	res, err := Parse([]byte("18446744073709551615"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if res.Kind != KindUint64 {
		t.Fatalf("Kind = %v, want KindUint64", res.Kind)
	}
	if res.U64 != math.MaxUint64 {
		t.Errorf("U64 = %d, want %d", res.U64, uint64(math.MaxUint64))
	}
}

func TestParse_Doubles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"simple float", "1.5", 1.5},
		{"negative float", "-2.5", -2.5},
		{"exponential", "1e10", 1e10},
		{"negative exponential", "-1e10", -1e10},
		{"plus exponent", "1e+10", 1e+10},
		{"small exponent", "1e-10", 1e-10},
		{"complex", "123.456e-7", 123.456e-7},
		{"too large for int64, falls to double", "99999999999999999999", 99999999999999999999.0},
		{"negative zero", "-0", math.Copysign(0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if res.Kind != KindDouble {
				t.Fatalf("Parse(%q) Kind = %v, want KindDouble", tt.input, res.Kind)
			}
			if res.F64 != tt.want && !(math.Signbit(res.F64) == math.Signbit(tt.want) && res.F64 == 0 && tt.want == 0) {
				t.Errorf("Parse(%q) F64 = %v, want %v", tt.input, res.F64, tt.want)
			}
		})
	}
}

func TestParse_NegativeZeroSignPreserved(t *testing.T) {
	res, err := Parse([]byte("-0"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !math.Signbit(res.F64) {
		t.Errorf("Parse(-0) lost the sign bit: got %v", res.F64)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"-",
		"01",
		"-01",
		".5",
		"1.",
		"1e",
		"1e+",
		"+1",
		"NaN",
		"Infinity",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse([]byte(input)); err != ErrNumber {
				t.Errorf("Parse(%q) error = %v, want ErrNumber", input, err)
			}
		})
	}
}
