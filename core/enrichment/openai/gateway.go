package openai

import (
	"context"
	"errors"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

var ErrUnparseable = errors.New("model output could not be parsed")

type summaryOutput struct {
	Summary string `json:"summary" jsonschema:"description=One or two sentences"`
}

type proposalOutput struct {
	Type       string   `json:"type" jsonschema:"enum=add_option,enum=add_criterion,enum=set_cell"`
	Option     string   `json:"option,omitempty"`
	Criterion  string   `json:"criterion,omitempty"`
	Weight     int      `json:"weight,omitempty" jsonschema:"minimum=-100,maximum=100"`
	Confidence float64  `json:"confidence,omitempty" jsonschema:"minimum=0,maximum=1"`
	Rationale  string   `json:"rationale,omitempty"`
	Anchors    []string `json:"anchors,omitempty" jsonschema:"maxItems=2"`
}

type proposalsOutput struct {
	Proposals []proposalOutput `json:"proposals" jsonschema:"minItems=1,maxItems=8"`
}

var (
	summaryFormat   = reflectFormat(summaryOutput{})
	stateFormat     = reflectFormat(perspective.Lists{})
	proposalsFormat = reflectFormat(proposalsOutput{})

	enrichmentFailures, _ = meter.Int64Counter("enrichment.failures",
		metric.WithDescription("Enrichment calls that failed or returned unparseable output"))
)

var _ enrichment.Gateway = (*Client)(nil)

func (c *Client) Summarize(ctx context.Context, req enrichment.Request) (string, error) {
	raw, err := c.run(ctx, "summarize", summarizeTemplate, req, summaryFormat)
	if err != nil {
		return "", err
	}
	summary := enrichment.ParseSummary(raw)
	if summary == "" {
		return "", c.fail(ctx, "summarize", ErrUnparseable)
	}
	return summary, nil
}

func (c *Client) ExtractState(ctx context.Context, req enrichment.Request) (perspective.Lists, error) {
	raw, err := c.run(ctx, "extract_state", extractTemplate, req, stateFormat)
	if err != nil {
		return perspective.Lists{}, err
	}
	lists, ok := enrichment.ParseState(raw)
	if !ok {
		return perspective.Lists{}, c.fail(ctx, "extract_state", ErrUnparseable)
	}
	return lists, nil
}

func (c *Client) ProposeActions(ctx context.Context, req enrichment.Request) ([]proposals.Proposal, error) {
	raw, err := c.run(ctx, "propose_actions", proposeTemplate, req, proposalsFormat)
	if err != nil {
		return nil, err
	}
	result, ok := enrichment.ParseProposals(raw, proposals.SourceScout)
	if !ok {
		return nil, c.fail(ctx, "propose_actions", ErrUnparseable)
	}
	return result, nil
}

func (c *Client) run(ctx context.Context, operation string, tmpl *template.Template, req enrichment.Request, format responseFormat) (string, error) {
	ctx, span := tracer.Start(ctx, "enrichment "+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("request.mode", string(req.Mode)),
		attribute.Int("request.window", len(req.Window)),
	)

	systemPrompt, err := render(tmpl, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	raw, err := c.complete(ctx, systemPrompt, conversationPrompt(req), format)
	if err != nil {
		err = fmt.Errorf("failed to %s: %w", operation, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		enrichmentFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
		return "", err
	}
	return raw, nil
}

func (c *Client) fail(ctx context.Context, operation string, err error) error {
	enrichmentFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	logger.Warn("enrichment output discarded", "operation", operation, "error", err)
	return fmt.Errorf("failed to %s: %w", operation, err)
}
