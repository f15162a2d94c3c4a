package coordinator

import (
	"log/slog"
	"strings"

	"github.com/koscakluka/ema-perspective/core/perspective"
)

// DefinitionPack frames the problem before normal state tracking starts.
type DefinitionPack struct {
	Title        string   `json:"title,omitempty" jsonschema:"description=Short name for the decision being made"`
	Scope        string   `json:"scope,omitempty" jsonschema:"description=What the decision covers and what it leaves out"`
	TimeWindow   string   `json:"time_window,omitempty" jsonschema:"description=When the decision is due or how far ahead it looks"`
	Participants []string `json:"participants,omitempty" jsonschema:"description=People involved in or affected by the decision"`
	Axes         []string `json:"axes,omitempty" jsonschema:"description=Dimensions the options should be compared on"`
}

func (p DefinitionPack) IsEmpty() bool {
	return p.Title == "" && p.Scope == "" && p.TimeWindow == "" &&
		len(p.Participants) == 0 && len(p.Axes) == 0
}

// merge copies the non-empty fields of update into p. List fields are
// unioned case-insensitively.
func (p *DefinitionPack) merge(update DefinitionPack) {
	if v := perspective.Normalize(update.Title); v != "" {
		p.Title = v
	}
	if v := perspective.Normalize(update.Scope); v != "" {
		p.Scope = v
	}
	if v := perspective.Normalize(update.TimeWindow); v != "" {
		p.TimeWindow = v
	}
	p.Participants = union(p.Participants, update.Participants)
	p.Axes = union(p.Axes, update.Axes)
}

func union(existing, added []string) []string {
	out := existing
	for _, value := range added {
		value = perspective.Normalize(value)
		if value == "" {
			continue
		}
		present := false
		for _, e := range out {
			if perspective.Equal(e, value) {
				present = true
				break
			}
		}
		if !present {
			out = append(out, value)
		}
	}
	return out
}

type definitionState struct {
	open bool
	pack DefinitionPack
	// acknowledgePending is set when the gate closes and cleared once the
	// acknowledgement starts playing.
	acknowledgePending bool
	acknowledged       bool
}

// openGate starts the conversation with the definition dialogue.
func (c *Coordinator) openGate() {
	if !c.definitionGate {
		return
	}
	c.definition.open = true
	c.store.SetGateOpen(true)
	c.requestReply(replyGreeting)
}

func (c *Coordinator) closeGate(reason string) {
	d := &c.definition
	if !d.open {
		return
	}
	d.open = false
	c.store.SetGateOpen(false)
	logger.Info("definition gate closed",
		slog.String("reason", reason),
		slog.String("title", d.pack.Title),
		slog.Int("axes", len(d.pack.Axes)))

	if d.acknowledged {
		return
	}
	d.acknowledgePending = true
	if c.session.responseID == "" && !c.session.replyRequested {
		c.acknowledgeDefinition()
	}
}

func (c *Coordinator) acknowledgeDefinition() {
	d := &c.definition
	if !d.acknowledgePending || d.acknowledged {
		return
	}
	c.requestReply(replyAcknowledge)
}

func (c *Coordinator) acceptDefinition() {
	if !c.definition.open {
		return
	}
	if c.definition.pack.IsEmpty() {
		c.notice = "Nothing captured yet, keep describing the problem or skip"
		return
	}
	c.closeGate("accepted")
}

func (c *Coordinator) skipDefinition() {
	if !c.definition.open {
		return
	}
	c.definition.pack = DefinitionPack{}
	c.closeGate("skipped")
}

// captureDefinition merges a capture_definition call into the pending pack.
func (c *Coordinator) captureDefinition(update DefinitionPack, complete bool) bool {
	d := &c.definition
	if !d.open {
		return false
	}
	d.pack.merge(update)
	if complete && !d.pack.IsEmpty() {
		c.closeGate("captured")
		return true
	}
	return false
}

func (p DefinitionPack) describe() string {
	var parts []string
	if p.Title != "" {
		parts = append(parts, "Decision: "+p.Title)
	}
	if p.Scope != "" {
		parts = append(parts, "Scope: "+p.Scope)
	}
	if p.TimeWindow != "" {
		parts = append(parts, "Time window: "+p.TimeWindow)
	}
	if len(p.Participants) > 0 {
		parts = append(parts, "Participants: "+strings.Join(p.Participants, ", "))
	}
	if len(p.Axes) > 0 {
		parts = append(parts, "Compare on: "+strings.Join(p.Axes, ", "))
	}
	return strings.Join(parts, "\n")
}
