package coordinator

import (
	"log/slog"

	"github.com/koscakluka/ema-perspective/core/events"
)

// route handles one provider event. Events are processed strictly in arrival
// order.
func (c *Coordinator) route(event events.Inbound) {
	switch ev := event.(type) {
	case events.SessionCreated:
		logger.Info("voice session created", slog.String("session_id", ev.SessionID), slog.String("model", ev.Model))
	case events.SessionUpdated:
		logger.Debug("voice session updated", slog.String("session_id", ev.SessionID))

	case events.ResponseCreated:
		c.onResponseCreated(ev)
	case events.ResponseTextDelta:
		c.appendReplyText(ev.ResponseID, ev.Delta, false)
	case events.ResponseTextDone:
		c.completeReplyText(ev.ResponseID, ev.Text)
	case events.ResponseAudioTranscriptDelta:
		c.appendReplyText(ev.ResponseID, ev.Delta, true)
	case events.ResponseAudioTranscriptDone:
		c.completeReplyText(ev.ResponseID, ev.Transcript)
	case events.ResponseAudioDelta:
		c.playAudio(ev)
	case events.ResponseDone:
		c.onResponseDone(ev)

	case events.InputTranscriptionDelta:
		// Partial transcripts are never shown or enriched.
	case events.InputTranscriptionCompleted:
		c.acceptTranscription(ev)
	case events.InputTranscriptionFailed:
		c.transcriptionFailed(ev)
	case events.SpeechStarted, events.SpeechStopped:
		logger.Debug("provider speech detection", slog.String("type", string(ev.Kind())))
	case events.InputBufferCommitted:
		logger.Debug("input buffer committed", slog.String("item_id", ev.ItemID))
	case events.InputBufferCleared:
		logger.Debug("input buffer cleared")

	case events.OutputBufferStarted:
		logger.Debug("output audio started", slog.String("response_id", ev.ResponseID))
	case events.OutputBufferCleared:
		c.onOutputCleared(ev)

	case events.ToolArgumentsDelta:
		c.appendToolArguments(ev)
	case events.ToolArgumentsDone:
		c.completeToolCall(ev)

	case events.Error:
		c.onProviderError(ev)
	case events.Unknown:
		logger.Debug("unrecognized provider event", slog.String("type", ev.Type))
	default:
		logger.Warn("unhandled provider event", slog.String("type", string(event.Kind())))
	}
}

// onProviderError recovers from a provider-reported failure by dropping the
// transient state it most likely concerns.
func (c *Coordinator) onProviderError(ev events.Error) {
	s := &c.session
	logger.Warn("provider error",
		slog.String("type", ev.Type),
		slog.String("code", ev.Code),
		slog.String("message", ev.Message),
		slog.String("event_id", ev.EventID),
		phaseAttr(s.phase))

	// Cancelling a response that already finished is harmless.
	if ev.Code == "response_cancel_not_active" {
		return
	}

	s.manualCommit = false
	c.cancelTimer(timerCommitWindow)
	clear(s.toolArgs)
	// Only an error about the pending response.create, or one that names no
	// client event, releases the reply request.
	if s.replyRequested && s.responseID == "" && (ev.EventID == "" || ev.EventID == s.requestEventID) {
		s.replyRequested = false
		s.requestEventID = ""
		if s.requestedKind == replyConfirmed {
			s.staged = true
		}
	}

	switch s.phase {
	case PhaseCommitting, PhaseAwaitingTranscript:
		c.cancelTimer(timerCommitTail)
		c.stopCapture()
		c.transition(PhaseIdle, "provider error")
	}
	c.notice = "Something went wrong, try again"
}
