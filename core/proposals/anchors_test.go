package proposals

import (
	"slices"
	"testing"
)

func TestSelectAnchor(t *testing.T) {
	testCases := []struct {
		name     string
		selected []Anchor
		anchor   Anchor
		want     []Anchor
	}{
		{name: "first", selected: nil, anchor: AnchorHealth, want: []Anchor{AnchorHealth}},
		{name: "second", selected: []Anchor{AnchorHealth}, anchor: AnchorCareer, want: []Anchor{AnchorHealth, AnchorCareer}},
		{name: "third evicts earliest", selected: []Anchor{AnchorHealth, AnchorCareer}, anchor: AnchorTime, want: []Anchor{AnchorCareer, AnchorTime}},
		{name: "reselect toggles off", selected: []Anchor{AnchorHealth, AnchorCareer}, anchor: AnchorHealth, want: []Anchor{AnchorCareer}},
		{name: "unknown ignored", selected: []Anchor{AnchorHealth}, anchor: "weather", want: []Anchor{AnchorHealth}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectAnchor(tc.selected, tc.anchor)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSelectAnchorDoesNotMutateInput(t *testing.T) {
	selected := []Anchor{AnchorHealth, AnchorCareer}
	SelectAnchor(selected, AnchorTime)
	if selected[0] != AnchorHealth || selected[1] != AnchorCareer {
		t.Fatalf("expected input to be unchanged, got %v", selected)
	}
}
