package availability

import (
	"errors"
	"testing"
	"time"
)

func TestIsValidHourMinute(t *testing.T) {
	valid := []string{"00:00", "09:59", "19:59", "23:59"}
	for _, s := range valid {
		if !IsValidHourMinute(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"00:60", "24:00", "9:00", "09:5", "0900", "", "ab:cd", "109:00"}
	for _, s := range invalid {
		if IsValidHourMinute(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestParseHourMinute(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"00:00", 0},
		{"00:01", time.Minute},
		{"00:02", 2 * time.Minute},
		{"01:00", time.Hour},
		{"02:00", 2 * time.Hour},
		{"23:59", 23*time.Hour + 59*time.Minute},
	}
	for _, c := range cases {
		got, err := ParseHourMinute(c.in)
		if err != nil {
			t.Fatalf("ParseHourMinute(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseHourMinute(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseHourMinute("24:00"); !errors.Is(err, ErrInvalidHourMinute) {
		t.Fatalf("expected ErrInvalidHourMinute, got %v", err)
	}
}

func TestFormatHourMinute(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{time.Hour, "01:00"},
		{2 * time.Hour, "02:00"},
		{12*time.Hour + 34*time.Minute, "12:34"},
		{23*time.Hour + 59*time.Minute, "23:59"},
	}
	for _, c := range cases {
		got, err := FormatHourMinute(c.in)
		if err != nil {
			t.Fatalf("FormatHourMinute(%v) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("FormatHourMinute(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatHourMinuteOutOfRange(t *testing.T) {
	for _, d := range []time.Duration{-time.Second, 24 * time.Hour, 25 * time.Hour} {
		if _, err := FormatHourMinute(d); !errors.Is(err, ErrClockOutOfRange) {
			t.Fatalf("FormatHourMinute(%v): expected ErrClockOutOfRange, got %v", d, err)
		}
	}
}

func TestHourMinuteRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += 7 {
			in, err := FormatHourMinute(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
			if err != nil {
				t.Fatalf("format %d:%d failed: %v", h, m, err)
			}
			d, err := ParseHourMinute(in)
			if err != nil {
				t.Fatalf("parse %q failed: %v", in, err)
			}
			out, err := FormatHourMinute(d)
			if err != nil {
				t.Fatalf("re-format %q failed: %v", in, err)
			}
			if out != in {
				t.Fatalf("round trip changed %q to %q", in, out)
			}
		}
	}
}
