package openai

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

//go:embed summarize.tmpl
var summarizeSystemPrompt string

//go:embed extract.tmpl
var extractSystemPrompt string

//go:embed propose.tmpl
var proposeSystemPrompt string

var (
	summarizeTemplate = template.Must(template.New("summarize").Parse(summarizeSystemPrompt))
	extractTemplate   = template.Must(template.New("extract").Parse(extractSystemPrompt))
	proposeTemplate   = template.Must(template.New("propose").Parse(proposeSystemPrompt))
)

type promptData struct {
	Mode         enrichment.Mode
	Focus        string
	Buckets      []perspective.Bucket
	Anchors      []proposals.Anchor
	MaxEntries   int
	MinProposals int
	MaxProposals int
}

func render(tmpl *template.Template, req enrichment.Request) (string, error) {
	var sb strings.Builder
	err := tmpl.Execute(&sb, promptData{
		Mode:         req.Mode,
		Focus:        req.Focus,
		Buckets:      perspective.Buckets,
		Anchors:      proposals.Anchors,
		MaxEntries:   enrichment.MaxBucketEntries,
		MinProposals: enrichment.MinProposals,
		MaxProposals: enrichment.MaxProposals,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// conversationPrompt renders the transcript window as the user message.
func conversationPrompt(req enrichment.Request) string {
	var sb strings.Builder
	sb.WriteString("Conversation:\n")
	for _, turn := range req.Window {
		switch turn.Role {
		case conversations.RoleUser:
			sb.WriteString("User: ")
		case conversations.RoleAssistant:
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	if partial := strings.TrimSpace(req.Partial); partial != "" {
		sb.WriteString("User (still speaking): ")
		sb.WriteString(partial)
		sb.WriteString("\n")
	}
	return sb.String()
}
