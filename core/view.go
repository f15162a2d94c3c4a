package coordinator

import (
	"log/slog"

	"github.com/jinzhu/copier"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

// View is everything the presentation layer may show. It is derived from
// the coordinator's state and never contains raw provider events.
type View struct {
	Status      string
	Phase       Phase
	Holding     bool
	AwaitingYou bool
	GateOpen    bool
	Definition  DefinitionPack
	Summary     string
	State       []BucketView
	Conflicts   []ConflictView
	Proposals   []ProposalView
	Grid        GridView
	// Transcript is only filled when enabled with WithTranscriptInView.
	Transcript []conversations.Turn
	Notice     string
}

type EntryView struct {
	ID     string
	Text   string
	Source perspective.Source
}

type BucketView struct {
	Bucket  perspective.Bucket
	Label   string
	Entries []EntryView
}

type ConflictView struct {
	Bucket perspective.Bucket
	A, B   string
}

type ProposalView struct {
	ID         string
	Kind       proposals.Kind
	Source     proposals.Source
	Option     string
	Criterion  string
	Weight     int
	Confidence float64
	Rationale  string
	Anchors    []proposals.Anchor
}

type CellView struct {
	Option     string
	Criterion  string
	Weight     int
	Confidence float64
	Rationale  string
	Anchors    []proposals.Anchor
}

type GridView struct {
	Options  []string
	Criteria []string
	Cells    []CellView
}

const (
	StatusConnecting       = "Connecting…"
	StatusConnectionFailed = "Connection failed"
	StatusConnectionLost   = "Connection lost"
	StatusReady            = "Ready"
	StatusListening        = "Listening…"
	StatusProcessing       = "Processing…"
	StatusAwaitingConfirm  = "Waiting for confirmation"
	StatusSpeaking         = "Speaking…"
	StatusDefinition       = "Setting up the problem…"
)

func (c *Coordinator) status() string {
	switch c.connection {
	case connectionPending:
		return StatusConnecting
	case connectionFailed:
		return StatusConnectionFailed
	case connectionLost:
		return StatusConnectionLost
	}

	switch c.session.phase {
	case PhaseHolding:
		return StatusListening
	case PhaseSpeaking:
		return StatusSpeaking
	}
	if c.definition.open {
		return StatusDefinition
	}
	switch c.session.phase {
	case PhaseCommitting, PhaseAwaitingTranscript, PhaseReconciling:
		return StatusProcessing
	case PhaseAwaitingSpeakApproval:
		return StatusAwaitingConfirm
	}
	return StatusReady
}

func (c *Coordinator) view() View {
	v := View{
		Status:      c.status(),
		Phase:       c.session.phase,
		Holding:     c.session.phase == PhaseHolding,
		AwaitingYou: c.session.staged && !c.definition.open,
		GateOpen:    c.definition.open,
		Summary:     c.summary,
		Notice:      c.notice,
	}
	c.copyInto(&v.Definition, c.definition.pack)

	for _, bucket := range perspective.Buckets {
		section := BucketView{Bucket: bucket, Label: bucketLabel(bucket)}
		c.copyInto(&section.Entries, c.store.Entries(bucket))
		v.State = append(v.State, section)
	}
	for _, conflict := range c.store.Conflicts() {
		v.Conflicts = append(v.Conflicts, ConflictView{Bucket: conflict.Bucket, A: conflict.A.Text, B: conflict.B.Text})
	}
	c.copyInto(&v.Proposals, c.queue.Pending())

	grid := c.queue.Grid()
	v.Grid.Options = grid.Options()
	v.Grid.Criteria = grid.Criteria()
	c.copyInto(&v.Grid.Cells, grid.Cells())

	if c.showTranscript {
		v.Transcript = c.transcript.Window(0)
	}
	return v
}

func (c *Coordinator) copyInto(dst, src any) {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("failed to build view", slog.String("error", err.Error()))
	}
}

func (c *Coordinator) publish() {
	if c.onView == nil {
		return
	}
	c.onView(c.view())
}
