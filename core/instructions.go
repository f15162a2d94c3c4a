package coordinator

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/koscakluka/ema-perspective/core/events"
	"github.com/koscakluka/ema-perspective/core/perspective"
)

//go:embed session.tmpl
var sessionPrompt string

//go:embed reply.tmpl
var replyPrompts string

var (
	sessionTemplate = template.Must(template.New("session").Parse(sessionPrompt))
	replyTemplates  = template.Must(template.New("reply").
			Funcs(template.FuncMap{"join": strings.Join}).
			Parse(replyPrompts))
)

type bucketSection struct {
	Label   string
	Entries []string
}

type instructionData struct {
	UpdateTool     string
	DefinitionTool string
	Definition     string
	Summary        string
	State          []bucketSection
}

func (c *Coordinator) instructionData() instructionData {
	data := instructionData{
		UpdateTool:     toolUpdateState,
		DefinitionTool: toolCaptureDefinition,
		Definition:     c.definition.pack.describe(),
		Summary:        c.summary,
	}
	lists := c.store.Lists()
	for _, bucket := range perspective.Buckets {
		if entries := lists.Get(bucket); len(entries) > 0 {
			data.State = append(data.State, bucketSection{Label: bucketLabel(bucket), Entries: entries})
		}
	}
	return data
}

func (c *Coordinator) replyInstructions(kind replyKind) (string, error) {
	var sb strings.Builder
	if err := replyTemplates.ExecuteTemplate(&sb, string(kind), c.instructionData()); err != nil {
		return "", fmt.Errorf("failed to render %s instructions: %w", kind, err)
	}
	return sb.String(), nil
}

func (c *Coordinator) sessionConfig() (events.SessionConfig, error) {
	var sb strings.Builder
	if err := sessionTemplate.Execute(&sb, c.instructionData()); err != nil {
		return events.SessionConfig{}, fmt.Errorf("failed to render session instructions: %w", err)
	}
	return events.SessionConfig{
		Modalities:        replyModalities,
		Instructions:      sb.String(),
		Voice:             c.settings.Voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		InputAudioTranscription: &events.InputTranscription{
			Model: c.settings.TranscriptionModel,
		},
		// Turns are committed by hand, so server side detection stays off.
		TurnDetection: nil,
		Tools:         sessionTools,
		ToolChoice:    "auto",
	}, nil
}

// startSession configures the voice session and opens the definition gate.
func (c *Coordinator) startSession() {
	config, err := c.sessionConfig()
	if err != nil {
		logger.Error("failed to configure voice session", "error", err)
		return
	}
	c.send(events.NewUpdateSession(config))
	c.openGate()
}

func bucketLabel(bucket perspective.Bucket) string {
	label := strings.ReplaceAll(string(bucket), "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
