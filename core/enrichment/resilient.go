package enrichment

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

// Resilient wraps a Gateway so that proposal generation never comes back
// empty while there is usable transcript: failures and empty results are
// replaced by HeuristicProposals. A nil inner gateway runs heuristics only.
type Resilient struct {
	inner   Gateway
	matcher *perspective.Matcher
	options func() []string
}

type ResilientOption func(*Resilient)

// WithKnownOptions supplies the options already in the perspective state, so
// heuristic cells target an existing option.
func WithKnownOptions(options func() []string) ResilientOption {
	return func(r *Resilient) {
		r.options = options
	}
}

func WithMatcher(matcher *perspective.Matcher) ResilientOption {
	return func(r *Resilient) {
		if matcher != nil {
			r.matcher = matcher
		}
	}
}

func NewResilient(inner Gateway, opts ...ResilientOption) *Resilient {
	r := &Resilient{inner: inner, matcher: perspective.DefaultMatcher()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resilient) Summarize(ctx context.Context, req Request) (string, error) {
	if r.inner == nil {
		return "", nil
	}
	return r.inner.Summarize(ctx, req)
}

func (r *Resilient) ExtractState(ctx context.Context, req Request) (perspective.Lists, error) {
	if r.inner == nil {
		return perspective.Lists{}, nil
	}
	return r.inner.ExtractState(ctx, req)
}

func (r *Resilient) ProposeActions(ctx context.Context, req Request) ([]proposals.Proposal, error) {
	ctx, span := tracer.Start(ctx, "propose actions with fallback")
	defer span.End()

	var (
		result []proposals.Proposal
		err    error
	)
	if r.inner != nil {
		result, err = r.inner.ProposeActions(ctx, req)
	}
	if err == nil && len(result) > 0 {
		return result, nil
	}
	if err != nil {
		logger.Warn("proposal generation failed, using heuristics", slog.String("error", err.Error()))
	}

	var known []string
	if r.options != nil {
		known = r.options()
	}
	fallback := HeuristicProposals(req.Window, known, r.matcher)
	span.SetAttributes(attribute.Bool("fallback", true), attribute.Int("proposals", len(fallback)))
	return fallback, nil
}
