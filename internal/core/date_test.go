package core

import (
	"testing"
	"time"
)

func TestMonthKeyOf(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"2026-03-05", "2026-03"},
		{"2026-03", "2026-03"},
		{"garbage-string", "garbage"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MonthKeyOf(tc.in); got != tc.out {
			t.Fatalf("MonthKeyOf(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestInMonth(t *testing.T) {
	cases := []struct {
		date, key string
		want      bool
	}{
		{"2026-03-05", "2026-03", true},
		{"2026-03-31", "2026-03", true},
		{"2026-04-01", "2026-03", false},
		{"", "2026-03", false},
		{"not-a-date", "2026-03", false},
		{"2026-03-05", "", false},
	}
	for _, tc := range cases {
		if got := InMonth(tc.date, tc.key); got != tc.want {
			t.Fatalf("InMonth(%q, %q) = %v, want %v", tc.date, tc.key, got, tc.want)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	cases := []struct {
		date string
		day  int
		ok   bool
	}{
		{"2026-03-01", 0, true}, // a Sunday
		{"2026-03-02", 1, true},
		{"2026-03-07", 6, true},
		{"2026-02-31", 0, false}, // normalises to March, rejected
		{"2026-13-01", 0, false},
		{"2026-3-1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := WeekdayOf(tc.date)
		if ok != tc.ok {
			t.Fatalf("WeekdayOf(%q) ok = %v, want %v", tc.date, ok, tc.ok)
		}
		if ok && got != tc.day {
			t.Fatalf("WeekdayOf(%q) = %d, want %d", tc.date, got, tc.day)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		key  string
		want int
	}{
		{"2026-01", 31},
		{"2026-02", 28},
		{"2024-02", 29},
		{"2026-04", 30},
		{"bogus", 0},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.key); got != tc.want {
			t.Fatalf("DaysInMonth(%q) = %d, want %d", tc.key, got, tc.want)
		}
	}
}

func TestAsOfDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if got := AsOfDay("2026-03", now); got != 14 {
		t.Fatalf("current month as-of = %d, want 14", got)
	}
	if got := AsOfDay("2026-02", now); got != 28 {
		t.Fatalf("past month as-of = %d, want 28", got)
	}
	if got := AsOfDay("junk", now); got != 0 {
		t.Fatalf("malformed key as-of = %d, want 0", got)
	}
}

func TestValidDate(t *testing.T) {
	good := []string{"2026-03-05", "2026-12-31", "2024-02-29"}
	bad := []string{"", "2026-03", "2026-02-30", "2025-02-29", "26-03-05", "2026/03/05", "2026-03-0x"}
	for _, d := range good {
		if !ValidDate(d) {
			t.Fatalf("expected %q to be valid", d)
		}
	}
	for _, d := range bad {
		if ValidDate(d) {
			t.Fatalf("expected %q to be invalid", d)
		}
	}
}
