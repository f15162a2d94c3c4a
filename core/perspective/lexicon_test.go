package perspective

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasNegation(t *testing.T) {
	testCases := []struct {
		name      string
		utterance string
		want      bool
	}{
		{name: "no longer", utterance: "I no longer care about the yard", want: true},
		{name: "not anymore", utterance: "the budget is not tight anymore", want: true},
		{name: "instead", utterance: "let's look at Tampa instead", want: true},
		{name: "changed my mind", utterance: "I changed my mind", want: true},
		{name: "plain statement", utterance: "the budget is tight", want: false},
	}

	matcher := DefaultMatcher()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matcher.HasNegation(tc.utterance); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestInferCriteria(t *testing.T) {
	signals := DefaultMatcher().InferCriteria("I want to compare staying in Brandon versus moving to St. Pete, cost matters a lot and the commute too")
	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %+v", signals)
	}
	if signals[0].Criterion != "cost" || signals[0].Weight != -30 {
		t.Fatalf("expected cost -30 first, got %+v", signals[0])
	}
	if signals[1].Criterion != "commute" || signals[1].Weight != -20 {
		t.Fatalf("expected commute -20 second, got %+v", signals[1])
	}
	if signals[0].Confidence != defaultCriterionConfidence {
		t.Fatalf("expected fixed confidence, got %v", signals[0].Confidence)
	}
}

func TestInferCriteriaNoMatch(t *testing.T) {
	if signals := DefaultMatcher().InferCriteria("hello there"); len(signals) != 0 {
		t.Fatalf("expected no signals, got %+v", signals)
	}
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `criteria:
  - criterion: weather
    pattern: '\b(sunny|rain)\b'
    weight: 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write lexicon: %v", err)
	}

	lexicon, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(lexicon.NegationMarkers) == 0 {
		t.Fatalf("expected default negation markers to be filled in")
	}

	matcher, err := lexicon.Compile()
	if err != nil {
		t.Fatalf("expected lexicon to compile, got %v", err)
	}
	signals := matcher.InferCriteria("it is always sunny there")
	if len(signals) != 1 || signals[0].Criterion != "weather" {
		t.Fatalf("expected weather signal, got %+v", signals)
	}
	if signals[0].Confidence != defaultCriterionConfidence {
		t.Fatalf("expected default confidence, got %v", signals[0].Confidence)
	}
}

func TestCompileRejectsInvalidPattern(t *testing.T) {
	_, err := Lexicon{NegationMarkers: []string{"("}}.Compile()
	if err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestIsConfirmation(t *testing.T) {
	testCases := []struct {
		name      string
		utterance string
		want      bool
	}{
		{name: "go ahead", utterance: "Okay, go ahead.", want: true},
		{name: "please continue", utterance: "please continue", want: true},
		{name: "what do you think", utterance: "So what do you think?", want: true},
		{name: "bare yes", utterance: "yes", want: false},
		{name: "yeah sure", utterance: "yeah, sure", want: false},
		{name: "unrelated", utterance: "I live in Brandon", want: false},
	}

	matcher := DefaultMatcher()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matcher.IsConfirmation(tc.utterance); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
