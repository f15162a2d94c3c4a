package proposals

import (
	"strings"
	"time"

	"github.com/koscakluka/ema-perspective/core/perspective"
)

// Kind identifies the grid edit a proposal carries.
type Kind string

const (
	KindAddOption    Kind = "add_option"
	KindAddCriterion Kind = "add_criterion"
	KindSetCell      Kind = "set_cell"
)

// Source identifies what produced a proposal.
type Source string

const (
	SourceExtractor Source = "extractor"
	SourceHeuristic Source = "heuristic"
	SourceScout     Source = "scout"
)

const (
	MinWeight     = -100
	MaxWeight     = 100
	MinConfidence = 0.0
	MaxConfidence = 1.0
)

// Proposal is a candidate edit to the DecisionGrid. Option is set for
// add_option and set_cell, Criterion for add_criterion and set_cell; the
// remaining fields only matter for set_cell.
type Proposal struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"type"`
	Source     Source    `json:"source"`
	Option     string    `json:"option,omitempty"`
	Criterion  string    `json:"criterion,omitempty"`
	Weight     int       `json:"weight,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Rationale  string    `json:"rationale,omitempty"`
	Anchors    []Anchor  `json:"anchors,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func AddOption(option string, source Source) Proposal {
	return Proposal{Kind: KindAddOption, Source: source, Option: option}
}

func AddCriterion(criterion string, source Source) Proposal {
	return Proposal{Kind: KindAddCriterion, Source: source, Criterion: criterion}
}

func SetCell(option, criterion string, weight int, confidence float64, rationale string, source Source) Proposal {
	return Proposal{
		Kind:       KindSetCell,
		Source:     source,
		Option:     option,
		Criterion:  criterion,
		Weight:     weight,
		Confidence: confidence,
		Rationale:  rationale,
	}
}

// Key is the case-insensitive dedup key (kind, option, criterion).
func (p Proposal) Key() string {
	switch p.Kind {
	case KindAddOption:
		return string(p.Kind) + "|" + fold(p.Option) + "|"
	case KindAddCriterion:
		return string(p.Kind) + "||" + fold(p.Criterion)
	default:
		return string(p.Kind) + "|" + fold(p.Option) + "|" + fold(p.Criterion)
	}
}

// Valid reports whether the proposal names everything its kind requires.
func (p Proposal) Valid() bool {
	switch p.Kind {
	case KindAddOption:
		return p.Option != ""
	case KindAddCriterion:
		return p.Criterion != ""
	case KindSetCell:
		return p.Option != "" && p.Criterion != ""
	}
	return false
}

func (p Proposal) normalized() Proposal {
	p.Option = perspective.Normalize(p.Option)
	p.Criterion = perspective.Normalize(p.Criterion)
	p.Rationale = strings.TrimSpace(p.Rationale)
	p.Weight = clampWeight(p.Weight)
	p.Confidence = clampConfidence(p.Confidence)
	p.Anchors = normalizeAnchors(p.Anchors)
	return p
}

func (p Proposal) clone() Proposal {
	if p.Anchors != nil {
		p.Anchors = append([]Anchor(nil), p.Anchors...)
	}
	return p
}

func fold(s string) string {
	return strings.ToLower(perspective.Normalize(s))
}
