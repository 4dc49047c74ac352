package users

import "testing"

func TestHistoryWindow(t *testing.T) {
	cases := []struct {
		name       string
		limit      string
		offset     string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", "", 50, 0},
		{"explicit", "25", "100", 25, 100},
		{"limit capped", "5000", "0", 50, 0},
		{"zero limit ignored", "0", "", 50, 0},
		{"negative offset ignored", "10", "-5", 10, 0},
		{"garbage ignored", "abc", "xyz", 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limit, offset := historyWindow(tc.limit, tc.offset)
			if limit != tc.wantLimit || offset != tc.wantOffset {
				t.Fatalf("got %d/%d, want %d/%d", limit, offset, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
