package coordinator

import (
	"slices"
	"testing"

	"github.com/koscakluka/ema-perspective/core/events"
)

func TestDefinitionPackMerge(t *testing.T) {
	pack := DefinitionPack{Title: "Where to live", Participants: []string{"Partner"}}

	pack.merge(DefinitionPack{
		Scope:        "  Brandon   or St. Pete ",
		Participants: []string{"partner", "kids"},
		Axes:         []string{"cost", " commute "},
	})

	if pack.Title != "Where to live" {
		t.Fatalf("expected title to be kept, got %q", pack.Title)
	}
	if pack.Scope != "Brandon or St. Pete" {
		t.Fatalf("expected normalized scope, got %q", pack.Scope)
	}
	if !slices.Equal(pack.Participants, []string{"Partner", "kids"}) {
		t.Fatalf("expected participants to be unioned, got %v", pack.Participants)
	}
	if !slices.Equal(pack.Axes, []string{"cost", "commute"}) {
		t.Fatalf("expected axes [cost commute], got %v", pack.Axes)
	}
}

func TestDefinitionPackIsEmpty(t *testing.T) {
	if !(DefinitionPack{}).IsEmpty() {
		t.Fatalf("expected zero pack to be empty")
	}
	if (DefinitionPack{Axes: []string{"cost"}}).IsEmpty() {
		t.Fatalf("expected pack with axes not to be empty")
	}
}

func TestAcceptDefinitionClosesGate(t *testing.T) {
	h := newHarness(t, WithDefinitionGate(true))
	h.deliver(
		events.NewResponseCreated("resp_greeting"),
		events.NewToolArgumentsDone("resp_greeting", "call_1", toolCaptureDefinition, `{"title":"New job","complete":false}`),
	)
	if !h.c.definition.open {
		t.Fatalf("expected an incomplete pack to keep the gate open")
	}

	h.c.AcceptDefinition()
	drain(h.c)

	if h.c.definition.open {
		t.Fatalf("expected accepting a captured pack to close the gate")
	}
	if !h.c.definition.acknowledgePending {
		t.Fatalf("expected the acknowledgement to wait for the greeting to finish")
	}
	if v := h.c.view(); v.Definition.Title != "New job" {
		t.Fatalf("expected definition in the view, got %+v", v.Definition)
	}
}
