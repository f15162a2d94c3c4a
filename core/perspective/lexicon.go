package perspective

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the configurable phrase lists used by reconciliation,
// criterion inference and spoken confirmation. Patterns are case-insensitive
// regular expressions.
type Lexicon struct {
	ConfirmPhrases  []string        `yaml:"confirm_phrases"`
	NegationMarkers []string        `yaml:"negation_markers"`
	Criteria        []CriterionRule `yaml:"criteria"`
}

type CriterionRule struct {
	Criterion  string  `yaml:"criterion"`
	Pattern    string  `yaml:"pattern"`
	Weight     int     `yaml:"weight"`
	Confidence float64 `yaml:"confidence"`
}

const defaultCriterionConfidence = 0.6

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		ConfirmPhrases: []string{
			`\bgo ahead\b`,
			`\bplease (continue|proceed|respond|answer)\b`,
			`\b(continue|proceed) please\b`,
			`\bcarry on\b`,
			`\byou can (speak|answer|respond|talk)( now)?\b`,
			`\bwhat do you think\b`,
			`\byour turn\b`,
		},
		NegationMarkers: []string{
			`\bno longer\b`,
			`\binstead\b`,
			`\bremove\b`,
			`\bdrop\b`,
			`\bscratch that\b`,
			`\bforget (about )?(that|it)\b`,
			`\bnever ?mind\b`,
			`\bactually\b`,
			`\bchanged my mind\b`,
			`\brather than\b`,
			`\bnot\b.*\bany ?more\b`,
			`\bdon'?t\b.*\bany ?more\b`,
			`\bisn'?t\b.*\bany ?more\b`,
		},
		Criteria: []CriterionRule{
			{Criterion: "cost", Pattern: `\b(costs?|price[sd]?|pricey|expensive|cheap(er)?|afford(able)?|budget|rent|mortgage|money)\b`, Weight: -30, Confidence: defaultCriterionConfidence},
			{Criterion: "commute", Pattern: `\b(commut(e|es|ing)|drive|driving|traffic)\b`, Weight: -20, Confidence: defaultCriterionConfidence},
			{Criterion: "space", Pattern: `\b(space|spacious|bigger|yard|square feet|bedrooms?)\b`, Weight: 20, Confidence: defaultCriterionConfidence},
			{Criterion: "quality", Pattern: `\b(quality|schools?|amenities)\b`, Weight: 20, Confidence: defaultCriterionConfidence},
			{Criterion: "safety", Pattern: `\b(safe|safety|crime)\b`, Weight: 25, Confidence: defaultCriterionConfidence},
			{Criterion: "risk", Pattern: `\b(risk|risky|uncertain(ty)?|unstable)\b`, Weight: -25, Confidence: defaultCriterionConfidence},
			{Criterion: "convenience", Pattern: `\b(convenien(t|ce)|walkable|nearby|close to)\b`, Weight: 15, Confidence: defaultCriterionConfidence},
		},
	}
}

// LoadLexicon reads a YAML lexicon from path. Sections missing from the file
// fall back to the defaults.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("failed to read lexicon: %w", err)
	}

	var lexicon Lexicon
	if err := yaml.Unmarshal(data, &lexicon); err != nil {
		return Lexicon{}, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	defaults := DefaultLexicon()
	if len(lexicon.ConfirmPhrases) == 0 {
		lexicon.ConfirmPhrases = defaults.ConfirmPhrases
	}
	if len(lexicon.NegationMarkers) == 0 {
		lexicon.NegationMarkers = defaults.NegationMarkers
	}
	if len(lexicon.Criteria) == 0 {
		lexicon.Criteria = defaults.Criteria
	}
	return lexicon, nil
}

// Matcher is a compiled Lexicon.
type Matcher struct {
	confirms  []*regexp.Regexp
	negations []*regexp.Regexp
	criteria  []compiledRule
}

type compiledRule struct {
	rule    CriterionRule
	pattern *regexp.Regexp
}

func (l Lexicon) Compile() (*Matcher, error) {
	m := &Matcher{}
	for _, expr := range l.ConfirmPhrases {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("invalid confirm phrase %q: %w", expr, err)
		}
		m.confirms = append(m.confirms, re)
	}
	for _, expr := range l.NegationMarkers {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("invalid negation marker %q: %w", expr, err)
		}
		m.negations = append(m.negations, re)
	}
	for _, rule := range l.Criteria {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for criterion %q: %w", rule.Criterion, err)
		}
		if rule.Confidence <= 0 {
			rule.Confidence = defaultCriterionConfidence
		}
		m.criteria = append(m.criteria, compiledRule{rule: rule, pattern: re})
	}
	return m, nil
}

var defaultMatcher = func() *Matcher {
	m, err := DefaultLexicon().Compile()
	if err != nil {
		panic(err)
	}
	return m
}()

// DefaultMatcher returns the compiled built-in lexicon.
func DefaultMatcher() *Matcher { return defaultMatcher }

// IsConfirmation reports whether utterance explicitly permits the assistant
// to speak. Bare affirmatives such as "yes" do not qualify.
func (m *Matcher) IsConfirmation(utterance string) bool {
	for _, re := range m.confirms {
		if re.MatchString(utterance) {
			return true
		}
	}
	return false
}

// HasNegation reports whether utterance contains a retraction or replacement
// marker.
func (m *Matcher) HasNegation(utterance string) bool {
	for _, re := range m.negations {
		if re.MatchString(utterance) {
			return true
		}
	}
	return false
}

// CriterionSignal is a criterion inferred from free text.
type CriterionSignal struct {
	Criterion  string
	Weight     int
	Confidence float64
	Match      string
}

// InferCriteria returns at most one signal per criterion, in lexicon order.
func (m *Matcher) InferCriteria(utterance string) []CriterionSignal {
	var signals []CriterionSignal
	seen := map[string]bool{}
	for _, c := range m.criteria {
		if seen[c.rule.Criterion] {
			continue
		}
		match := c.pattern.FindString(utterance)
		if match == "" {
			continue
		}
		seen[c.rule.Criterion] = true
		signals = append(signals, CriterionSignal{
			Criterion:  c.rule.Criterion,
			Weight:     c.rule.Weight,
			Confidence: c.rule.Confidence,
			Match:      match,
		})
	}
	return signals
}
