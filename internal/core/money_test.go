package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.٥", 0, false},
		{"١٢", 0, false},
		{"１", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseAmountAndFormat(t *testing.T) {
	v, err := ParseAmount("1500,75")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1500.75 {
		t.Fatalf("expected 1500.75, got %v", v)
	}
	if got := FormatAmount(v); got != "1500.75" {
		t.Fatalf("FormatAmount = %q", got)
	}
	if got := FormatAmount(200); got != "200" {
		t.Fatalf("FormatAmount(200) = %q", got)
	}
}
