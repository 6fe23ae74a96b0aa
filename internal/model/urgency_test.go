package model

import "testing"

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		in   string
		want Urgency
	}{
		{"High", UrgencyHigh},
		{"high", UrgencyHigh},
		{" HIGH ", UrgencyHigh},
		{"Medium", UrgencyMedium},
		{"low", UrgencyLow},
		{"Unknown", UrgencyUnknown},
		{"critical", UrgencyUnknown},
		{"", UrgencyUnknown},
	}

	for _, tc := range tests {
		if got := ParseUrgency(tc.in); got != tc.want {
			t.Errorf("ParseUrgency(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestUrgencyRank(t *testing.T) {
	tests := []struct {
		urgency Urgency
		want    int
	}{
		{UrgencyHigh, 1},
		{UrgencyMedium, 2},
		{UrgencyLow, 3},
		{UrgencyUnknown, 4},
		{Urgency("garbage"), 4}, // unrecognized ranks with Unknown
	}

	for _, tc := range tests {
		if got := tc.urgency.Rank(); got != tc.want {
			t.Errorf("Rank(%q) = %d; want %d", tc.urgency, got, tc.want)
		}
	}
}
