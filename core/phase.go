package coordinator

import (
	"log/slog"
	"slices"
)

// Phase is where the current conversational turn stands.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseHolding means the user is pressing talk and audio is streaming.
	PhaseHolding
	// PhaseCommitting is the short tail after release before the commit.
	PhaseCommitting
	// PhaseAwaitingTranscript waits for the transcription of the committed
	// buffer inside the acceptance window.
	PhaseAwaitingTranscript
	// PhaseReconciling means enrichment calls for the latest turn are in
	// flight.
	PhaseReconciling
	// PhaseAwaitingSpeakApproval means a reply is staged and waits for the
	// user to confirm.
	PhaseAwaitingSpeakApproval
	PhaseSpeaking
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseHolding:
		return "holding"
	case PhaseCommitting:
		return "committing"
	case PhaseAwaitingTranscript:
		return "awaiting_transcript"
	case PhaseReconciling:
		return "reconciling"
	case PhaseAwaitingSpeakApproval:
		return "awaiting_speak_approval"
	case PhaseSpeaking:
		return "speaking"
	}
	return "unknown"
}

// transitions lists the phases reachable from each phase. Idle and Holding
// are reachable from everywhere: errors reset the turn and the user may
// always barge in.
var transitions = map[Phase][]Phase{
	PhaseIdle:                  {PhaseReconciling, PhaseSpeaking},
	PhaseHolding:               {PhaseCommitting},
	PhaseCommitting:            {PhaseAwaitingTranscript},
	PhaseAwaitingTranscript:    {PhaseReconciling, PhaseSpeaking},
	PhaseReconciling:           {PhaseAwaitingSpeakApproval, PhaseSpeaking},
	PhaseAwaitingSpeakApproval: {PhaseReconciling, PhaseSpeaking},
	PhaseSpeaking:              {PhaseReconciling},
}

func canTransition(from, to Phase) bool {
	if to == PhaseIdle || to == PhaseHolding || from == to {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// transition is the only place the phase changes.
func (c *Coordinator) transition(to Phase, reason string) bool {
	from := c.session.phase
	if from == to {
		return true
	}
	if !canTransition(from, to) {
		logger.Warn("rejected phase transition",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
			slog.String("reason", reason))
		return false
	}
	c.session.phase = to
	logger.Debug("phase transition",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("reason", reason))
	return true
}
