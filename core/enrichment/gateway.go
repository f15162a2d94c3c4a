package enrichment

import (
	"context"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

// Mode tells the gateway how to treat the newest conversation content.
type Mode string

const (
	// ModeLive integrates an in-progress user utterance cautiously.
	ModeLive Mode = "live"
	// ModeFinal reflects the most recent assistant turn authoritatively.
	ModeFinal Mode = "final"
)

// Request is the input shared by every enrichment operation.
type Request struct {
	Window  []conversations.Turn
	Partial string
	Mode    Mode
	// Focus narrows proposal generation, e.g. to the option being discussed.
	Focus string
}

// Gateway is the text channel that keeps the structured understanding of the
// conversation up to date. Every call is best effort.
type Gateway interface {
	Summarize(ctx context.Context, req Request) (string, error)
	ExtractState(ctx context.Context, req Request) (perspective.Lists, error)
	ProposeActions(ctx context.Context, req Request) ([]proposals.Proposal, error)
}

const (
	MaxBucketEntries = 12
	MinProposals     = 3
	MaxProposals     = 8
)
