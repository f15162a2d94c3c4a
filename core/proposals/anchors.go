package proposals

import (
	"slices"
	"strings"
)

// Anchor tags a cell with the life area it touches.
type Anchor string

const (
	AnchorHealth        Anchor = "health"
	AnchorFinances      Anchor = "finances"
	AnchorFamily        Anchor = "family"
	AnchorCareer        Anchor = "career"
	AnchorRelationships Anchor = "relationships"
	AnchorHome          Anchor = "home"
	AnchorTime          Anchor = "time"
	AnchorGrowth        Anchor = "growth"
)

// Anchors is the fixed anchor vocabulary, in display order.
var Anchors = []Anchor{
	AnchorHealth,
	AnchorFinances,
	AnchorFamily,
	AnchorCareer,
	AnchorRelationships,
	AnchorHome,
	AnchorTime,
	AnchorGrowth,
}

// MaxAnchors is how many anchors a cell may carry.
const MaxAnchors = 2

func ParseAnchor(s string) (Anchor, bool) {
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	return a, slices.Contains(Anchors, a)
}

// SelectAnchor toggles anchor in selected. Selecting an anchor beyond
// MaxAnchors evicts the earliest selection.
func SelectAnchor(selected []Anchor, anchor Anchor) []Anchor {
	if _, ok := ParseAnchor(string(anchor)); !ok {
		return selected
	}
	if i := slices.Index(selected, anchor); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	next := append(slices.Clone(selected), anchor)
	if len(next) > MaxAnchors {
		next = next[len(next)-MaxAnchors:]
	}
	return next
}

func normalizeAnchors(anchors []Anchor) []Anchor {
	var out []Anchor
	for _, a := range anchors {
		parsed, ok := ParseAnchor(string(a))
		if !ok || slices.Contains(out, parsed) {
			continue
		}
		out = append(out, parsed)
	}
	if len(out) > MaxAnchors {
		out = out[:MaxAnchors]
	}
	return out
}
