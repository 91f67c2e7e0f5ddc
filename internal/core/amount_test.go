package core

import (
	"encoding/json"
	"testing"
)

func TestAmountUnmarshalLenient(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
	}{
		{`500`, AmountFromInt(500)},
		{`123.45`, AmountFromFloat(123.45)},
		{`"250"`, AmountFromInt(250)},
		{`null`, Amount{}},
		{`"abc"`, Amount{}},
		{`true`, Amount{}},
		{`"NaN"`, Amount{}},
	}
	for _, tc := range cases {
		var got Amount
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Fatalf("unmarshal %s: unexpected error %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("unmarshal %s = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestAmountMissingFieldIsZero(t *testing.T) {
	var e Expense
	if err := json.Unmarshal([]byte(`{"date":"2026-03-05","category":"Eat"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.Amount.IsZero() {
		t.Fatalf("missing amount = %s, want 0", e.Amount)
	}
}

func TestAmountMarshalBareNumber(t *testing.T) {
	b, err := json.Marshal(AmountFromFloat(123.45))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "123.45" {
		t.Fatalf("marshal = %s, want 123.45", b)
	}
}

func TestParseAmount(t *testing.T) {
	if _, err := ParseAmount("12.50"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := ParseAmount("abc"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAmountArithmetic(t *testing.T) {
	a := AmountFromInt(800)
	b := AmountFromInt(10000)
	if got := b.Sub(a); !got.Equal(AmountFromInt(9200)) {
		t.Fatalf("sub = %s, want 9200", got)
	}
	if got := a.MulInt(5); !got.Equal(AmountFromInt(4000)) {
		t.Fatalf("mul = %s, want 4000", got)
	}
	if b.Cmp(a) != 1 || a.Cmp(b) != -1 || a.Cmp(a) != 0 {
		t.Fatalf("cmp ordering broken")
	}
}
