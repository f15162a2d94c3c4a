package coordinator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koscakluka/ema-perspective/core/events"
	"github.com/koscakluka/ema-perspective/core/perspective"
)

const (
	toolUpdateState       = "update_perspective_state"
	toolCaptureDefinition = "capture_definition"
)

type updateStateArgs struct {
	Add    perspective.Lists `json:"add" jsonschema:"description=Entries to add to each bucket"`
	Remove perspective.Lists `json:"remove" jsonschema:"description=Existing entries to remove from each bucket"`
}

type captureDefinitionArgs struct {
	DefinitionPack
	Complete bool `json:"complete" jsonschema:"description=True once the problem is framed well enough to start"`
}

type toolResult struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Added    int    `json:"added,omitempty"`
	Removed  int    `json:"removed,omitempty"`
	Complete bool   `json:"complete,omitempty"`
	Ignored  string `json:"ignored,omitempty"`
}

var sessionTools = []events.Tool{
	events.NewFunctionTool(toolUpdateState,
		"Record changes to the user's goals, facts, questions, options, decisions, next steps and risks. Only include what changed.",
		toolParameters(updateStateArgs{})),
	events.NewFunctionTool(toolCaptureDefinition,
		"Save what is known so far about the decision the user wants to think through. Set complete once title and scope are clear.",
		toolParameters(captureDefinitionArgs{})),
}

func toolParameters(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true, RequiredFromJSONSchemaTags: true}
	schema := reflector.Reflect(v)
	schema.Version = ""
	schema.ID = ""
	return schema
}

func (c *Coordinator) appendToolArguments(ev events.ToolArgumentsDelta) {
	args, ok := c.session.toolArgs[ev.CallID]
	if !ok {
		args = &strings.Builder{}
		c.session.toolArgs[ev.CallID] = args
	}
	args.WriteString(ev.Delta)
}

// completeToolCall dispatches the assembled call and always answers it, so
// the provider's turn never stalls on an unanswered call.
func (c *Coordinator) completeToolCall(ev events.ToolArgumentsDone) {
	args := ev.Arguments
	if buffered, ok := c.session.toolArgs[ev.CallID]; ok {
		if args == "" {
			args = buffered.String()
		}
		delete(c.session.toolArgs, ev.CallID)
	}

	result := c.dispatchTool(ev.Name, args)
	output, err := json.Marshal(result)
	if err != nil {
		output = []byte(`{"ok":false}`)
	}
	c.send(events.NewToolOutput(ev.CallID, string(output)))
}

func (c *Coordinator) dispatchTool(name, args string) toolResult {
	_, span := tracer.Start(c.baseContext, "dispatch tool",
		trace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	switch name {
	case toolUpdateState:
		return c.updateStateTool(args)
	case toolCaptureDefinition:
		return c.captureDefinitionTool(args)
	}

	err := fmt.Errorf("unknown tool %q", name)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Warn("unknown tool called", slog.String("tool", name))
	return toolResult{OK: false, Error: err.Error()}
}

// decodeToolArguments yields the zero value for blank or invalid arguments.
func decodeToolArguments[T any](name, args string) T {
	var v T
	if strings.TrimSpace(args) == "" {
		return v
	}
	if err := json.Unmarshal([]byte(args), &v); err != nil {
		logger.Warn("invalid tool arguments", slog.String("tool", name), slog.String("error", err.Error()))
		var zero T
		return zero
	}
	return v
}

func (c *Coordinator) updateStateTool(args string) toolResult {
	parsed := decodeToolArguments[updateStateArgs](toolUpdateState, args)
	if c.definition.open {
		return toolResult{OK: true, Ignored: "the problem definition is still being captured"}
	}

	applied := c.store.ApplyPatch(perspective.Patch{Add: parsed.Add, Remove: parsed.Remove}, perspective.SourceTool)
	if applied.Added.Len() > 0 {
		c.queue.Enqueue(c.optionProposals()...)
	}
	return toolResult{OK: true, Added: applied.Added.Len(), Removed: applied.Removed.Len()}
}

func (c *Coordinator) captureDefinitionTool(args string) toolResult {
	parsed := decodeToolArguments[captureDefinitionArgs](toolCaptureDefinition, args)
	if !c.definition.open {
		return toolResult{OK: true, Ignored: "the problem definition was already accepted"}
	}
	complete := c.captureDefinition(parsed.DefinitionPack, parsed.Complete)
	return toolResult{OK: true, Complete: complete}
}
