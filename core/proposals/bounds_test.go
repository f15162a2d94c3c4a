package proposals

import "testing"

func TestParseWeight(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		current int
		want    int
	}{
		{name: "plain", input: "42", current: 0, want: 42},
		{name: "negative", input: " -30 ", current: 0, want: -30},
		{name: "rounds", input: "12.6", current: 0, want: 13},
		{name: "clamps high", input: "250", current: 0, want: 100},
		{name: "clamps low", input: "-999", current: 0, want: -100},
		{name: "non numeric keeps current", input: "lots", current: 15, want: 15},
		{name: "empty keeps current", input: "", current: -5, want: -5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseWeight(tc.input, tc.current); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParseConfidence(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		current float64
		want    float64
	}{
		{name: "fraction", input: "0.25", current: 0, want: 0.25},
		{name: "percent", input: "80%", current: 0, want: 0.8},
		{name: "clamps high", input: "7", current: 0, want: 1},
		{name: "clamps low", input: "-0.5", current: 0.4, want: 0},
		{name: "non numeric keeps current", input: "high", current: 0.4, want: 0.4},
		{name: "nan keeps current", input: "NaN", current: 0.3, want: 0.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseConfidence(tc.input, tc.current); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
