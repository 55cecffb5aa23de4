package gcal

import (
	"testing"
	"time"
)

func TestEventWindowDefaultDuration(t *testing.T) {
	start, end, err := EventWindow("25/12/2026", "19:30", 0, time.UTC)
	if err != nil {
		t.Fatalf("EventWindow() error = %v", err)
	}
	want := time.Date(2026, 12, 25, 19, 30, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
	if got := end.Sub(start); got != 60*time.Minute {
		t.Fatalf("duration = %v, want 60m", got)
	}
}

func TestEventWindowExplicitDuration(t *testing.T) {
	start, end, err := EventWindow("2026-12-25", "08:00", 90, time.UTC)
	if err != nil {
		t.Fatalf("EventWindow() error = %v", err)
	}
	if got := end.Sub(start); got != 90*time.Minute {
		t.Fatalf("duration = %v, want 90m", got)
	}
	if start.Day() != 25 || start.Month() != time.December {
		t.Fatalf("start = %v, want Dec 25", start)
	}
}

func TestEventWindowBadInputs(t *testing.T) {
	cases := []struct {
		name string
		date string
		hour string
	}{
		{"empty date", "", "10:00"},
		{"empty time", "25/12/2026", ""},
		{"garbage date", "natal", "10:00"},
		{"garbage time", "25/12/2026", "morning"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := EventWindow(tc.date, tc.hour, 60, time.UTC); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
