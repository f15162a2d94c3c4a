package enrichment

import (
	"slices"
	"strings"
	"testing"

	"github.com/koscakluka/ema-perspective/core/proposals"
)

func TestParseState(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		wantOK    bool
		wantFacts []string
		wantGoals []string
	}{
		{
			name:      "strict json",
			raw:       `{"goals":["Find a home"],"facts":["cost matters a lot"]}`,
			wantOK:    true,
			wantFacts: []string{"cost matters a lot"},
			wantGoals: []string{"Find a home"},
		},
		{
			name:      "fenced json",
			raw:       "Here you go:\n```json\n{\"facts\":[\"two kids\"]}\n```",
			wantOK:    true,
			wantFacts: []string{"two kids"},
		},
		{
			name:      "brace substring",
			raw:       `Sure! {"facts": ["rent is high"]} Hope that helps.`,
			wantOK:    true,
			wantFacts: []string{"rent is high"},
		},
		{
			name:      "wrapped in state",
			raw:       `{"state":{"facts":["rent is high"]}}`,
			wantOK:    true,
			wantFacts: []string{"rent is high"},
		},
		{
			name:      "coerces non strings and duplicates",
			raw:       `{"facts":["a", 3, null, {"x":1}, " A ", "b"], "goals": "single goal"}`,
			wantOK:    true,
			wantFacts: []string{"a", "b"},
			wantGoals: []string{"single goal"},
		},
		{
			name:   "garbage",
			raw:    "I could not do that.",
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lists, ok := ParseState(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("expected ok %v, got %v", tc.wantOK, ok)
			}
			if !slices.Equal(lists.Facts, tc.wantFacts) {
				t.Fatalf("expected facts %v, got %v", tc.wantFacts, lists.Facts)
			}
			if !slices.Equal(lists.Goals, tc.wantGoals) {
				t.Fatalf("expected goals %v, got %v", tc.wantGoals, lists.Goals)
			}
		})
	}
}

func TestParseStateCapsBuckets(t *testing.T) {
	items := make([]string, 0, 20)
	for i := range 20 {
		items = append(items, `"item `+string(rune('a'+i))+`"`)
	}
	lists, ok := ParseState(`{"risks":[` + strings.Join(items, ",") + `]}`)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(lists.Risks) != MaxBucketEntries {
		t.Fatalf("expected %d risks, got %d", MaxBucketEntries, len(lists.Risks))
	}
}

func TestParseSummary(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "json", raw: `{"summary":" Weighing two cities. "}`, want: "Weighing two cities."},
		{name: "plain", raw: "Weighing two cities.", want: "Weighing two cities."},
		{name: "broken json", raw: `{"summary":`, want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseSummary(tc.raw); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseProposals(t *testing.T) {
	raw := `{"proposals":[
		{"type":"add_option","option":"Stay in Brandon"},
		{"type":"set_cell","option":"Stay in Brandon","criterion":"cost","weight":"-30","confidence":0.7,"anchors":["finances",1]},
		{"type":"set_cell","option":"Stay in Brandon"},
		{"type":"paint_house","option":"x"}
	]}`

	got, ok := ParseProposals(raw, proposals.SourceScout)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid proposals, got %+v", got)
	}
	if got[1].Weight != -30 || got[1].Confidence != 0.7 {
		t.Fatalf("expected numeric coercion, got %+v", got[1])
	}
	if len(got[1].Anchors) != 1 || got[1].Anchors[0] != proposals.AnchorFinances {
		t.Fatalf("expected finances anchor, got %v", got[1].Anchors)
	}
	for _, p := range got {
		if p.Source != proposals.SourceScout {
			t.Fatalf("expected scout source, got %q", p.Source)
		}
	}
}

func TestParseProposalsBareArray(t *testing.T) {
	got, ok := ParseProposals(`[{"kind":"add_criterion","criterion":"commute"}]`, proposals.SourceScout)
	if !ok || len(got) != 1 || got[0].Kind != proposals.KindAddCriterion {
		t.Fatalf("expected one add_criterion, got %+v (%v)", got, ok)
	}

	if _, ok := ParseProposals("no idea", proposals.SourceScout); ok {
		t.Fatalf("expected garbage to fail")
	}
}
