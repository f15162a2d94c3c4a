package enrichment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

const place = `([A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*)*)`

var optionPatterns = []struct {
	re     *regexp.Regexp
	prefix string
}{
	{re: regexp.MustCompile(`\b(?:[Ss]tay|[Ss]taying|[Rr]emain|[Rr]emaining) in\s+` + place), prefix: "Stay in"},
	{re: regexp.MustCompile(`\b(?:[Mm]ove|[Mm]oving|[Rr]elocate|[Rr]elocating) to\s+` + place), prefix: "Move to"},
}

// DetectOptions finds alternatives phrased as staying in or moving to a named
// place, in order of appearance.
func DetectOptions(text string) []string {
	type found struct {
		at     int
		option string
	}
	var matches []found
	for _, p := range optionPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.TrimRight(text[m[2]:m[3]], ".'-")
			matches = append(matches, found{at: m[0], option: p.prefix + " " + name})
		}
	}

	var options []string
	for len(matches) > 0 {
		first := 0
		for i := range matches {
			if matches[i].at < matches[first].at {
				first = i
			}
		}
		option := matches[first].option
		matches = append(matches[:first], matches[first+1:]...)

		duplicate := false
		for _, o := range options {
			duplicate = duplicate || perspective.Equal(o, option)
		}
		if !duplicate {
			options = append(options, option)
		}
	}
	return options
}

// HeuristicProposals derives grid proposals from the user's words without a
// model round trip. Options come from DetectOptions and known options; each
// inferred criterion becomes a set_cell on the first option, or an
// add_criterion when no option is known yet.
func HeuristicProposals(window []conversations.Turn, knownOptions []string, matcher *perspective.Matcher) []proposals.Proposal {
	if matcher == nil {
		matcher = perspective.DefaultMatcher()
	}

	var userText []string
	for _, turn := range window {
		if turn.Role == conversations.RoleUser {
			userText = append(userText, turn.Text)
		}
	}
	if len(userText) == 0 {
		return nil
	}

	options := append([]string(nil), knownOptions...)
	var out []proposals.Proposal
	for _, text := range userText {
		for _, option := range DetectOptions(text) {
			known := false
			for _, o := range options {
				known = known || perspective.Equal(o, option)
			}
			if !known {
				options = append(options, option)
				out = append(out, proposals.AddOption(option, proposals.SourceHeuristic))
			}
		}
	}

	seen := map[string]bool{}
	for i := len(userText) - 1; i >= 0; i-- {
		for _, signal := range matcher.InferCriteria(userText[i]) {
			if seen[signal.Criterion] {
				continue
			}
			seen[signal.Criterion] = true
			if len(options) == 0 {
				out = append(out, proposals.AddCriterion(signal.Criterion, proposals.SourceHeuristic))
				continue
			}
			rationale := fmt.Sprintf("you mentioned %q", signal.Match)
			out = append(out, proposals.SetCell(options[0], signal.Criterion, signal.Weight, signal.Confidence, rationale, proposals.SourceHeuristic))
		}
	}

	if len(out) > MaxProposals {
		out = out[:MaxProposals]
	}
	return out
}
