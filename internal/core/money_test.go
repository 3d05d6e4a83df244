package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.50", true},
		{".5", "0.50", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false}, // rounds to zero
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Fixed() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.Fixed(), err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrValidation) || !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected invalid amount validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromCents(12050)
	b := MoneyFromInt(80)

	if got := a.Add(b); !got.Equal(MoneyFromCents(20050)) {
		t.Fatalf("add: got %s", got)
	}
	if got := a.Sub(b); !got.Equal(MoneyFromCents(4050)) {
		t.Fatalf("sub: got %s", got)
	}
	if got := (Money{}).Add(b); !got.Equal(b) {
		t.Fatalf("zero value add: got %s", got)
	}
	if a.Cents() != 12050 {
		t.Fatalf("cents: got %d", a.Cents())
	}
	if !a.GreaterThan(b) || !b.LessThan(a) {
		t.Fatalf("comparison failed for %s and %s", a, b)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := MoneyFromCents(1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := MoneyFromInt(-5).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyJSON(t *testing.T) {
	in := MoneyFromCents(9999)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Money
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if !out.Equal(in) {
		t.Fatalf("expected %s, got %s", in, out)
	}
}
