package proposals

import (
	"slices"

	"github.com/koscakluka/ema-perspective/core/perspective"
)

type Cell struct {
	Weight     int      `json:"weight"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale,omitempty"`
	Anchors    []Anchor `json:"anchors,omitempty"`
}

// CellEntry is a cell together with its coordinates.
type CellEntry struct {
	Option    string `json:"option"`
	Criterion string `json:"criterion"`
	Cell
}

type cellKey struct {
	option    string
	criterion string
}

// Grid is the options × criteria decision grid. Options and criteria are
// case-insensitive sets that keep insertion order; a cell never references
// an option or criterion that is not in its set.
type Grid struct {
	options  []string
	criteria []string
	cells    map[cellKey]Cell
	order    []cellKey
}

func NewGrid() *Grid {
	return &Grid{cells: map[cellKey]Cell{}}
}

func (g *Grid) AddOption(option string) bool {
	option = perspective.Normalize(option)
	if option == "" || g.HasOption(option) {
		return false
	}
	g.options = append(g.options, option)
	return true
}

func (g *Grid) AddCriterion(criterion string) bool {
	criterion = perspective.Normalize(criterion)
	if criterion == "" || g.HasCriterion(criterion) {
		return false
	}
	g.criteria = append(g.criteria, criterion)
	return true
}

func (g *Grid) HasOption(option string) bool {
	return slices.IndexFunc(g.options, func(o string) bool { return fold(o) == fold(option) }) >= 0
}

func (g *Grid) HasCriterion(criterion string) bool {
	return slices.IndexFunc(g.criteria, func(c string) bool { return fold(c) == fold(criterion) }) >= 0
}

// SetCell writes the cell, adding option and criterion first when missing.
func (g *Grid) SetCell(option, criterion string, cell Cell) {
	g.AddOption(option)
	g.AddCriterion(criterion)

	k := cellKey{option: fold(option), criterion: fold(criterion)}
	if _, ok := g.cells[k]; !ok {
		g.order = append(g.order, k)
	}
	cell.Weight = clampWeight(cell.Weight)
	cell.Confidence = clampConfidence(cell.Confidence)
	cell.Anchors = normalizeAnchors(cell.Anchors)
	g.cells[k] = cell
}

func (g *Grid) Cell(option, criterion string) (Cell, bool) {
	cell, ok := g.cells[cellKey{option: fold(option), criterion: fold(criterion)}]
	if ok {
		cell.Anchors = slices.Clone(cell.Anchors)
	}
	return cell, ok
}

// Contains reports whether the effect of p is already part of the grid.
func (g *Grid) Contains(p Proposal) bool {
	switch p.Kind {
	case KindAddOption:
		return g.HasOption(p.Option)
	case KindAddCriterion:
		return g.HasCriterion(p.Criterion)
	case KindSetCell:
		_, ok := g.Cell(p.Option, p.Criterion)
		return ok
	}
	return false
}

func (g *Grid) Options() []string  { return slices.Clone(g.options) }
func (g *Grid) Criteria() []string { return slices.Clone(g.criteria) }

// Cells returns every cell in the order it was first written, with display
// casing for its coordinates.
func (g *Grid) Cells() []CellEntry {
	entries := make([]CellEntry, 0, len(g.order))
	for _, k := range g.order {
		cell := g.cells[k]
		cell.Anchors = slices.Clone(cell.Anchors)
		entries = append(entries, CellEntry{
			Option:    g.display(g.options, k.option),
			Criterion: g.display(g.criteria, k.criterion),
			Cell:      cell,
		})
	}
	return entries
}

func (g *Grid) display(values []string, folded string) string {
	if i := slices.IndexFunc(values, func(v string) bool { return fold(v) == folded }); i >= 0 {
		return values[i]
	}
	return folded
}

// Counts returns the number of options, criteria and cells.
func (g *Grid) Counts() (options, criteria, cells int) {
	return len(g.options), len(g.criteria), len(g.cells)
}

func (g *Grid) Clear() {
	g.options = nil
	g.criteria = nil
	g.cells = map[cellKey]Cell{}
	g.order = nil
}
