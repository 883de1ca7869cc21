package utils

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateOTPFormat(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}$`)
	for i := 0; i < 50; i++ {
		code := GenerateOTP()
		if !re.MatchString(code) {
			t.Fatalf("otp %q is not four digits", code)
		}
	}
}

func TestParseClock(t *testing.T) {
	good := map[string]string{
		"08:00":   "08:00",
		" 23:59 ": "23:59",
		"00:00":   "00:00",
	}
	for in, want := range good {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"8am", "24:00", "12:60", "", "08:00:00"} {
		if _, err := ParseClock(in); err == nil {
			t.Fatalf("ParseClock(%q) accepted invalid input", in)
		}
	}
}

func TestCombineDateClock(t *testing.T) {
	got, err := CombineDateClock("2030-01-02", "08:30")
	if err != nil {
		t.Fatalf("combine error: %v", err)
	}
	want := time.Date(2030, 1, 2, 8, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("combined = %v, want %v", got, want)
	}

	if _, err := CombineDateClock("02/01/2030", "08:30"); err == nil {
		t.Fatal("accepted invalid date")
	}
}

func TestMinutesSinceTruncates(t *testing.T) {
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		delta time.Duration
		want  int
	}{
		{29 * time.Minute, 29},
		{30*time.Minute + 59*time.Second, 30},
		{31 * time.Minute, 31},
		{-5 * time.Minute, -5},
	}
	for _, tc := range cases {
		if got := MinutesSince(base, base.Add(tc.delta)); got != tc.want {
			t.Fatalf("MinutesSince(+%v) = %d, want %d", tc.delta, got, tc.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		150:    "1.50",
		30000:  "300.00",
		-12345: "-123.45",
	}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Fatalf("FormatMoney(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := NormalizeSpace("  a   b \t c "); got != "a b c" {
		t.Fatalf("NormalizeSpace = %q", got)
	}
}
