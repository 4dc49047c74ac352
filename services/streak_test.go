package services

import (
	"testing"
	"time"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStartOfDayUTC(t *testing.T) {
	// 23:30 in UTC+7 is 16:30 UTC the same day
	loc := time.FixedZone("UTC+7", 7*3600)
	local := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	got := StartOfDay(local)
	want := ts("2024-03-10T00:00:00Z")
	if !got.Equal(want) {
		t.Fatalf("StartOfDay(%v) = %v, want %v", local, got, want)
	}
}

func TestNextStreakNoHistory(t *testing.T) {
	now := ts("2024-03-10T12:00:00Z")
	if got := NextStreak(nil, 0, now); got != 1 {
		t.Fatalf("expected new streak 1, got %d", got)
	}
}

func TestNextStreakContinuesFromYesterday(t *testing.T) {
	now := ts("2024-03-10T12:00:00Z")
	last := ts("2024-03-09T18:45:00Z")
	if got := NextStreak(&last, 4, now); got != 5 {
		t.Fatalf("expected streak 5, got %d", got)
	}
}

func TestNextStreakInclusiveBoundary(t *testing.T) {
	// a task completed exactly at start-of-yesterday still continues
	now := ts("2024-03-10T00:00:01Z")
	last := ts("2024-03-09T00:00:00Z")
	if got := NextStreak(&last, 1, now); got != 2 {
		t.Fatalf("expected streak 2 at inclusive boundary, got %d", got)
	}
}

func TestNextStreakResetsAfterGap(t *testing.T) {
	now := ts("2024-03-10T12:00:00Z")
	cases := []time.Time{
		ts("2024-03-08T23:59:59Z"), // two days ago
		ts("2024-02-01T12:00:00Z"), // long gap
	}
	for _, last := range cases {
		last := last
		if got := NextStreak(&last, 7, now); got != 1 {
			t.Errorf("NextStreak(last=%v) = %d, want reset to 1", last, got)
		}
	}
}

func TestFinalPointsThreshold(t *testing.T) {
	cases := []struct {
		name       string
		base       int
		streak     int
		threshold  int
		multiplier float64
		want       int
	}{
		{"below threshold", 100, 2, 3, 2, 100},
		{"at threshold", 100, 3, 3, 2, 200},
		{"above threshold", 100, 10, 3, 2, 200},
		{"no policy", 100, 10, 0, 2, 100},
		{"fractional multiplier rounds", 50, 3, 3, 1.5, 75},
		{"zero base stays zero", 0, 5, 3, 2, 0},
	}
	for _, c := range cases {
		if got := FinalPoints(c.base, c.streak, c.threshold, c.multiplier); got != c.want {
			t.Errorf("%s: FinalPoints(%d,%d,%d,%v) = %d, want %d",
				c.name, c.base, c.streak, c.threshold, c.multiplier, got, c.want)
		}
	}
}

func TestLongestStreakMonotone(t *testing.T) {
	// replay a month of on/off completions through the decision logic and
	// check the historical max never decreases
	now := ts("2024-03-01T09:00:00Z")
	var last *time.Time
	current, longest := 0, 0
	for day := 0; day < 30; day++ {
		eventTime := now.AddDate(0, 0, day)
		if day%7 == 3 {
			continue // skip a day each week to force resets
		}
		current = NextStreak(last, current, eventTime)
		prevLongest := longest
		if current > longest {
			longest = current
		}
		if longest < prevLongest {
			t.Fatalf("longest streak decreased on day %d: %d -> %d", day, prevLongest, longest)
		}
		if longest < current {
			t.Fatalf("day %d: longest %d fell below current %d", day, longest, current)
		}
		completed := eventTime
		last = &completed
	}
}
