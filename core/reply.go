package coordinator

import (
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/events"
)

type replyKind string

const (
	replyGreeting    replyKind = "definition_greeting"
	replyDefinition  replyKind = "definition_dialogue"
	replyAcknowledge replyKind = "definition_acknowledgement"
	replyConfirmed   replyKind = "confirmed"
)

// automatic replies are sent without the user's confirmation and are spaced
// out by the reply cooldown.
func (k replyKind) automatic() bool {
	return k == replyDefinition || k == replyAcknowledge
}

var replyModalities = []string{"audio", "text"}

// requestReply asks the provider to speak. It is dropped, not queued, while
// another reply is requested or in flight.
func (c *Coordinator) requestReply(kind replyKind) bool {
	s := &c.session
	if s.responseID != "" || s.replyRequested {
		droppedReplies.Add(c.baseContext, 1, metric.WithAttributes(attribute.String("reply", string(kind))))
		logger.Debug("reply request dropped",
			slog.String("reply", string(kind)),
			slog.String("response_id", s.responseID),
			slog.Bool("requested", s.replyRequested))
		return false
	}

	if kind.automatic() && !s.lastReplyAt.IsZero() {
		if wait := c.timings.ReplyCooldown - c.clock.Now().Sub(s.lastReplyAt); wait > 0 {
			s.deferredReply = kind
			c.schedule(timerReplyCooldown, wait)
			return false
		}
	}

	instructions, err := c.replyInstructions(kind)
	if err != nil {
		logger.Error("failed to build reply instructions", slog.String("reply", string(kind)), slog.String("error", err.Error()))
		return false
	}

	create := events.NewCreateResponse(events.ResponseConfig{
		Modalities:   replyModalities,
		Instructions: instructions,
		Metadata:     map[string]string{"reply": string(kind)},
	})
	c.send(create)
	s.replyRequested = true
	s.requestEventID = create.EventID()
	s.requestedKind = kind
	s.deferredReply = ""
	s.lastReplyAt = c.clock.Now()
	return true
}

func (c *Coordinator) retryDeferredReply() {
	s := &c.session
	kind := s.deferredReply
	if kind == "" {
		return
	}
	switch s.phase {
	case PhaseHolding, PhaseCommitting, PhaseAwaitingTranscript:
		c.schedule(timerReplyCooldown, c.timings.ReplyCooldown)
		return
	}
	s.deferredReply = ""
	c.requestReply(kind)
}

func (c *Coordinator) confirm() {
	s := &c.session
	if c.definition.open {
		logger.Debug("confirmation ignored while the definition gate is open")
		return
	}

	switch {
	case s.phase == PhaseReconciling:
		s.confirmed = true
	case s.staged && (s.phase == PhaseAwaitingSpeakApproval || s.phase == PhaseIdle):
		s.confirmed = true
		c.sendStaged()
	default:
		logger.Debug("confirmation ignored", phaseAttr(s.phase), slog.Bool("staged", s.staged))
	}
}

func (c *Coordinator) sendStaged() {
	s := &c.session
	if !c.requestReply(replyConfirmed) {
		return
	}
	s.staged = false
	s.pendingUserTurn = false
}

// stageReply ends reconciliation with a candidate reply that waits for
// the user's confirmation, unless it was already given.
func (c *Coordinator) stageReply() {
	s := &c.session
	s.staged = true
	if s.pendingUserTurn || s.confirmed {
		c.transition(PhaseAwaitingSpeakApproval, "reply staged")
	} else {
		c.transition(PhaseIdle, "turn settled")
	}
	if s.confirmed {
		c.sendStaged()
	}
}

func (c *Coordinator) onResponseCreated(ev events.ResponseCreated) {
	s := &c.session
	if ev.ResponseID == "" {
		return
	}
	if s.replyRequested && s.responseID == "" {
		s.replyRequested = false
		s.requestEventID = ""
		s.responseID = ev.ResponseID
		s.activeKind = s.requestedKind
		s.muted = false
		if s.activeKind == replyAcknowledge {
			c.definition.acknowledged = true
			c.definition.acknowledgePending = false
		}
		s.reply.reset()
		c.transition(PhaseSpeaking, "response created")
		return
	}
	if s.responseID == ev.ResponseID || s.cancelled[ev.ResponseID] {
		return
	}

	reason := "unsolicited"
	if s.responseID != "" {
		reason = "concurrent"
	}
	c.cancelResponse(ev.ResponseID, reason)
}

func (c *Coordinator) appendReplyText(responseID, delta string, spoken bool) {
	s := &c.session
	if responseID == "" || responseID != s.responseID {
		return
	}
	if spoken {
		s.reply.transcript.WriteString(delta)
	} else {
		s.reply.text.WriteString(delta)
	}
}

func (c *Coordinator) completeReplyText(responseID, text string) {
	s := &c.session
	if responseID == "" || responseID != s.responseID || text == "" {
		return
	}
	s.reply.final = text
}

func (c *Coordinator) playAudio(ev events.ResponseAudioDelta) {
	s := &c.session
	if c.audio == nil || s.muted || ev.ResponseID == "" || ev.ResponseID != s.responseID {
		return
	}
	if err := c.audio.Play(ev.Audio); err != nil {
		logger.Warn("failed to play audio", slog.String("error", err.Error()))
	}
}

func (c *Coordinator) onOutputCleared(ev events.OutputBufferCleared) {
	s := &c.session
	if ev.ResponseID != "" {
		delete(s.cancelled, ev.ResponseID)
	}
	if s.responseID == "" {
		s.muted = false
	}
}

func (c *Coordinator) onResponseDone(ev events.ResponseDone) {
	s := &c.session
	if s.cancelled[ev.ResponseID] {
		delete(s.cancelled, ev.ResponseID)
		if len(s.cancelled) == 0 && s.responseID == "" {
			s.muted = false
		}
		return
	}
	if ev.ResponseID == "" || ev.ResponseID != s.responseID {
		logger.Debug("ignoring done for an untracked response", slog.String("response_id", ev.ResponseID))
		return
	}
	c.finalize(ev)
}

// finalize runs once per tracked response: the reply joins the transcript,
// the state is reconciled and the summary refreshed, then the next reply is
// staged behind a fresh confirmation.
func (c *Coordinator) finalize(ev events.ResponseDone) {
	_, span := tracer.Start(c.baseContext, "finalize turn")
	defer span.End()

	s := &c.session
	text := s.reply.String()
	kind := s.activeKind
	s.responseID = ""
	s.activeKind = ""
	s.reply.reset()
	s.lastReplyAt = c.clock.Now()

	span.SetAttributes(
		attribute.String("response.id", ev.ResponseID),
		attribute.String("response.status", ev.Status),
		attribute.String("reply", string(kind)),
		attribute.Int("reply.length", len(text)))

	c.transcript.Append(conversations.RoleAssistant, text, c.clock.Now())

	if c.definition.open {
		c.transition(PhaseIdle, "definition reply finished")
		c.startEnrichment(opSummarize, enrichment.ModeFinal)
		return
	}
	if c.definition.acknowledgePending && s.deferredReply != replyAcknowledge {
		c.transition(PhaseIdle, "definition reply finished")
		c.acknowledgeDefinition()
		return
	}

	s.confirmed = false
	s.staged = false
	c.transition(PhaseReconciling, "reply finished")
	c.reconcileTurn(enrichment.ModeFinal)
}

func phaseAttr(p Phase) slog.Attr {
	return slog.String("phase", p.String())
}
