// Package core provides the domain types shared by every other package:
// dated records, monetary amounts and calendar-month bucketing.
//
// All record amounts are THB. Amount wraps a decimal value so that sums
// never accumulate floating-point drift and so that malformed input from
// the wire degrades to zero instead of poisoning an aggregate.
package core

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Amount is a THB monetary value.
//
// Unmarshalling is deliberately lenient: null, missing or non-numeric
// input coerces to zero. A single bad record must never corrupt the
// monthly aggregates computed over the whole set.
type Amount struct {
	dec decimal.Decimal
}

func AmountFromInt(v int64) Amount {
	return Amount{dec: decimal.NewFromInt(v)}
}

func AmountFromFloat(v float64) Amount {
	return Amount{dec: decimal.NewFromFloat(v)}
}

// ParseAmount converts a decimal string to an Amount. Unlike JSON
// unmarshalling this is strict and returns ErrInvalidAmount on garbage;
// it is used where the caller must reject bad input (form submission)
// rather than coerce it.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{dec: d}, nil
}

func (a Amount) Add(b Amount) Amount { return Amount{dec: a.dec.Add(b.dec)} }
func (a Amount) Sub(b Amount) Amount { return Amount{dec: a.dec.Sub(b.dec)} }
func (a Amount) Neg() Amount         { return Amount{dec: a.dec.Neg()} }

// MulInt returns a*n. Used by the status classifier to compare the
// remaining/budget ratio against a threshold without dividing.
func (a Amount) MulInt(n int64) Amount {
	return Amount{dec: a.dec.Mul(decimal.NewFromInt(n))}
}

// Cmp returns -1, 0 or +1 comparing a against b.
func (a Amount) Cmp(b Amount) int { return a.dec.Cmp(b.dec) }

func (a Amount) IsNegative() bool { return a.dec.IsNegative() }
func (a Amount) IsPositive() bool { return a.dec.IsPositive() }
func (a Amount) IsZero() bool     { return a.dec.IsZero() }

func (a Amount) Equal(b Amount) bool { return a.dec.Equal(b.dec) }

// Float64 returns the value for display purposes. Keep arithmetic on
// Amount itself; the float conversion is lossy.
func (a Amount) Float64() float64 {
	f, _ := a.dec.Float64()
	return f
}

func (a Amount) String() string { return a.dec.String() }

// MarshalJSON emits a bare JSON number, matching the wire format the
// record API has always used.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.dec.String()), nil
}

// UnmarshalJSON accepts a number, a quoted numeric string or null.
// Anything else coerces to zero rather than failing the whole document.
func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		a.dec = decimal.Decimal{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(trimmed); err != nil {
		a.dec = decimal.Decimal{}
		return nil
	}
	a.dec = d
	return nil
}
