package markethours

import (
	"testing"
	"time"
)

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"weekday mid-session", time.Date(2026, time.March, 4, 11, 0, 0, 0, IST), true},
		{"weekday before open", time.Date(2026, time.March, 4, 9, 0, 0, 0, IST), false},
		{"weekday at open", time.Date(2026, time.March, 4, 9, 15, 0, 0, IST), true},
		{"weekday at close", time.Date(2026, time.March, 4, 15, 30, 0, 0, IST), false},
		{"saturday", time.Date(2026, time.March, 7, 11, 0, 0, 0, IST), false},
		{"republic day", time.Date(2026, time.January, 26, 11, 0, 0, 0, IST), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMarketOpen(tc.t); got != tc.want {
				t.Errorf("IsMarketOpen(%s) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestNextOpen_SkipsWeekend(t *testing.T) {
	// Friday after close (2026-03-06 is a Friday).
	fri := time.Date(2026, time.March, 6, 16, 0, 0, 0, IST)
	next := NextOpen(fri)

	want := time.Date(2026, time.March, 9, 9, 15, 0, 0, IST) // Monday
	if !next.Equal(want) {
		t.Errorf("NextOpen = %s, want %s", next, want)
	}
}

func TestNextOpen_SameDayBeforeOpen(t *testing.T) {
	early := time.Date(2026, time.March, 4, 8, 0, 0, 0, IST)
	next := NextOpen(early)
	want := time.Date(2026, time.March, 4, 9, 15, 0, 0, IST)
	if !next.Equal(want) {
		t.Errorf("NextOpen = %s, want %s", next, want)
	}
}

func TestIsTradingDay_Holiday(t *testing.T) {
	if IsTradingDay(time.Date(2026, time.December, 25, 11, 0, 0, 0, IST)) {
		t.Error("Christmas should not be a trading day")
	}
	if !IsTradingDay(time.Date(2026, time.March, 4, 11, 0, 0, 0, IST)) {
		t.Error("regular Wednesday should be a trading day")
	}
}
