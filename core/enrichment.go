package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

type enrichOp string

const (
	opExtractState   enrichOp = "extract_state"
	opProposeActions enrichOp = "propose_actions"
	opSummarize      enrichOp = "summarize"
)

var enrichOps = []enrichOp{opExtractState, opProposeActions, opSummarize}

// operation makes each enrichment call single flight. A request made while
// one is running replaces any earlier pending request.
type operation struct {
	inFlight bool
	pending  *enrichment.Request
}

type enrichmentDone struct {
	op        enrichOp
	summary   string
	state     perspective.Lists
	proposals []proposals.Proposal
	err       error
}

// reconcileTurn refreshes state, proposals and summary for the latest turn.
func (c *Coordinator) reconcileTurn(mode enrichment.Mode) {
	for _, op := range enrichOps {
		c.startEnrichment(op, mode)
	}
	c.checkReconciled()
}

func (c *Coordinator) startEnrichment(op enrichOp, mode enrichment.Mode) {
	req := enrichment.Request{
		Window: c.transcript.Window(conversations.DefaultWindowSize),
		Mode:   mode,
	}
	if op == opProposeActions {
		if options := c.knownOptions(); len(options) > 0 {
			req.Focus = options[0]
		}
	}

	o := c.operations[op]
	if o.inFlight {
		o.pending = &req
		return
	}
	c.launch(op, req)
}

func (c *Coordinator) launch(op enrichOp, req enrichment.Request) {
	c.operations[op].inFlight = true
	gateway := c.gateway
	c.runner(string(op), func(ctx context.Context) (err error) {
		result := enrichmentDone{op: op}
		// The completion is always posted so the operation cannot stay in
		// flight after a panicking gateway.
		defer func() {
			if recovered := recover(); recovered != nil {
				result.err = fmt.Errorf("%s panicked: %v", op, recovered)
				err = result.err
			}
			c.post(result)
		}()

		switch op {
		case opSummarize:
			result.summary, result.err = gateway.Summarize(ctx, req)
		case opExtractState:
			result.state, result.err = gateway.ExtractState(ctx, req)
		case opProposeActions:
			result.proposals, result.err = gateway.ProposeActions(ctx, req)
		default:
			result.err = fmt.Errorf("unknown enrichment operation %q", op)
		}
		return nil
	})
}

func (c *Coordinator) completeEnrichment(m enrichmentDone) {
	o := c.operations[m.op]
	o.inFlight = false

	if m.err != nil {
		enrichmentFailures.Add(c.baseContext, 1, metric.WithAttributes(attribute.String("operation", string(m.op))))
		logger.Warn("enrichment failed, keeping previous result",
			slog.String("operation", string(m.op)),
			slog.String("error", m.err.Error()))
	} else {
		c.applyEnrichment(m)
	}

	if o.pending != nil {
		req := *o.pending
		o.pending = nil
		c.launch(m.op, req)
	}
	c.checkReconciled()
}

// applyEnrichment writes a result into its own slice of state. Results are
// always reconciled against the current state, so a late result from an
// earlier turn cannot wipe out newer entries.
func (c *Coordinator) applyEnrichment(m enrichmentDone) {
	switch m.op {
	case opSummarize:
		if summary := strings.TrimSpace(m.summary); summary != "" {
			c.summary = summary
		}
	case opExtractState:
		if c.definition.open {
			return
		}
		patch := c.store.ReconcileAgainstExtraction(m.state, c.session.lastUserUtterance)
		applied := c.store.ApplyPatch(patch, perspective.SourceExtraction)
		if !applied.IsEmpty() {
			logger.Debug("state reconciled",
				slog.Int("added", applied.Added.Len()),
				slog.Int("removed", applied.Removed.Len()))
		}
		batch := c.optionProposals()
		batch = append(batch, c.inferCells(c.session.lastUserUtterance)...)
		c.queue.Enqueue(batch...)
	case opProposeActions:
		if c.definition.open {
			return
		}
		c.queue.Enqueue(m.proposals...)
	}
}

func (c *Coordinator) enrichmentBusy() bool {
	for _, o := range c.operations {
		if o.inFlight || o.pending != nil {
			return true
		}
	}
	return false
}

func (c *Coordinator) checkReconciled() {
	if c.session.phase != PhaseReconciling || c.enrichmentBusy() {
		return
	}
	c.stageReply()
}

// optionProposals offers every state option that is not yet in the grid.
func (c *Coordinator) optionProposals() []proposals.Proposal {
	grid := c.queue.Grid()
	var out []proposals.Proposal
	for _, option := range c.knownOptions() {
		if !grid.HasOption(option) {
			out = append(out, proposals.AddOption(option, proposals.SourceExtractor))
		}
	}
	return out
}

// inferCells turns criteria mentioned in the utterance into cells on the
// first known option, or into bare criteria when no option is known.
func (c *Coordinator) inferCells(utterance string) []proposals.Proposal {
	signals := c.matcher.InferCriteria(utterance)
	if len(signals) == 0 {
		return nil
	}
	options := c.knownOptions()
	out := make([]proposals.Proposal, 0, len(signals))
	for _, signal := range signals {
		if len(options) == 0 {
			out = append(out, proposals.AddCriterion(signal.Criterion, proposals.SourceHeuristic))
			continue
		}
		rationale := fmt.Sprintf("you mentioned %q", signal.Match)
		out = append(out, proposals.SetCell(options[0], signal.Criterion, signal.Weight, signal.Confidence, rationale, proposals.SourceHeuristic))
	}
	return out
}
