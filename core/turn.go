package coordinator

import (
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/events"
)

func (c *Coordinator) holdStart() {
	s := &c.session
	if s.phase == PhaseHolding {
		return
	}

	if s.responseID != "" {
		id := s.responseID
		s.responseID = ""
		s.activeKind = ""
		s.reply.reset()
		c.cancelResponse(id, "barge_in")
	}
	// A reply requested but not yet created would start talking over the
	// user, so it is treated as unsolicited when it shows up.
	s.replyRequested = false
	s.requestEventID = ""
	c.mute()

	c.send(events.NewClearInputBuffer())
	s.manualCommit = false
	c.cancelTimer(timerCommitTail)
	c.cancelTimer(timerCommitWindow)

	s.holdStartedAt = c.clock.Now()
	c.transition(PhaseHolding, "hold started")
	c.startCapture()
}

func (c *Coordinator) holdRelease() {
	s := &c.session
	if s.phase != PhaseHolding {
		return
	}

	held := c.clock.Now().Sub(s.holdStartedAt)
	if held < c.timings.MinHold {
		c.stopCapture()
		c.send(events.NewClearInputBuffer())
		discardedHolds.Add(c.baseContext, 1)
		logger.Debug("hold discarded", slog.Duration("held", held))
		c.transition(PhaseIdle, "hold too short")
		return
	}

	c.transition(PhaseCommitting, "hold released")
	c.schedule(timerCommitTail, c.timings.CommitTail)
}

// commit runs after the tail delay: the buffer is committed, the acceptance
// window opens and the microphone is detached.
func (c *Coordinator) commit() {
	s := &c.session
	if s.phase != PhaseCommitting {
		return
	}

	c.send(events.NewCommitInputBuffer())
	s.manualCommit = true
	s.commitDeadline = c.clock.Now().Add(c.timings.CommitWindow)
	c.schedule(timerCommitWindow, c.timings.CommitWindow)
	c.stopCapture()
	c.transition(PhaseAwaitingTranscript, "input committed")
}

func (c *Coordinator) expireCommitWindow() {
	s := &c.session
	if !s.manualCommit {
		return
	}
	s.manualCommit = false
	logger.Info("commit window elapsed without a transcript")
	if s.phase == PhaseAwaitingTranscript {
		c.transition(PhaseIdle, "commit window elapsed")
	}
}

func (c *Coordinator) startCapture() {
	s := &c.session
	if c.audio == nil || s.capturing {
		return
	}
	err := c.audio.StartCapture(c.baseContext, func(audio []byte) {
		c.post(audioFrame{audio: audio})
	})
	if err != nil {
		logger.Error("failed to start capture", slog.String("error", err.Error()))
		c.notice = "Microphone unavailable"
		return
	}
	s.capturing = true
}

func (c *Coordinator) stopCapture() {
	s := &c.session
	if c.audio == nil || !s.capturing {
		return
	}
	s.capturing = false
	if err := c.audio.StopCapture(); err != nil {
		logger.Warn("failed to stop capture", slog.String("error", err.Error()))
	}
}

func (c *Coordinator) forwardAudio(audio []byte) {
	switch c.session.phase {
	case PhaseHolding, PhaseCommitting:
		c.send(events.NewAppendInputAudio(audio))
	}
}

// acceptTranscription admits a transcript only for the current manual
// commit: not while holding, and only inside the acceptance window.
func (c *Coordinator) acceptTranscription(ev events.InputTranscriptionCompleted) {
	s := &c.session
	now := c.clock.Now()
	switch {
	case s.phase == PhaseHolding:
		logger.Debug("transcript ignored while holding", slog.String("item_id", ev.ItemID))
		return
	case !s.manualCommit:
		logger.Debug("transcript ignored without a manual commit", slog.String("item_id", ev.ItemID))
		return
	case now.After(s.commitDeadline):
		logger.Debug("transcript ignored after the commit window", slog.String("item_id", ev.ItemID))
		s.manualCommit = false
		return
	}

	s.manualCommit = false
	c.cancelTimer(timerCommitWindow)

	text := strings.TrimSpace(ev.Transcript)
	if text == "" {
		c.transition(PhaseIdle, "empty transcript")
		return
	}
	c.acceptUserTurn(text)
}

func (c *Coordinator) transcriptionFailed(ev events.InputTranscriptionFailed) {
	s := &c.session
	logger.Warn("transcription failed", slog.String("item_id", ev.ItemID), slog.String("message", ev.Message))
	if !s.manualCommit {
		return
	}
	s.manualCommit = false
	c.cancelTimer(timerCommitWindow)
	c.notice = "Didn't catch that, try again"
	c.transition(PhaseIdle, "transcription failed")
}

func (c *Coordinator) sendText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	switch c.session.phase {
	case PhaseHolding, PhaseCommitting:
		logger.Debug("typed text ignored while talking")
		return
	}
	c.send(events.NewCreateUserMessage(text))
	c.acceptUserTurn(text)
}

// acceptUserTurn records a finalized user utterance and starts the turn's
// enrichment, or answers directly while the definition gate is open.
func (c *Coordinator) acceptUserTurn(text string) {
	s := &c.session
	c.transcript.Append(conversations.RoleUser, text, c.clock.Now())
	s.lastUserUtterance = text

	if c.definition.open {
		c.transition(PhaseIdle, "definition dialogue")
		c.startEnrichment(opSummarize, enrichment.ModeLive)
		c.requestReply(replyDefinition)
		return
	}

	confirming := c.matcher.IsConfirmation(text)
	if confirming && s.staged {
		c.transition(PhaseIdle, "spoken confirmation")
		c.confirm()
		return
	}

	s.pendingUserTurn = true
	s.staged = false
	s.confirmed = confirming
	c.transition(PhaseReconciling, "user turn")

	if len(c.knownOptions()) > 0 {
		if enqueued := c.queue.Enqueue(c.inferCells(text)...); len(enqueued) > 0 {
			logger.Debug("heuristic proposals enqueued", slog.Int("count", len(enqueued)))
		}
	}
	c.reconcileTurn(enrichment.ModeLive)
}

func (c *Coordinator) mute() {
	c.session.muted = true
	if c.audio != nil {
		c.audio.ClearPlayback()
	}
}

func (c *Coordinator) cancelResponse(id, reason string) {
	c.send(events.NewCancelResponse(id))
	c.session.cancelled[id] = true
	if c.session.responseID == "" {
		c.mute()
	}
	suppressedResponses.Add(c.baseContext, 1, metric.WithAttributes(attribute.String("reason", reason)))
	logger.Info("response cancelled", slog.String("response_id", id), slog.String("reason", reason))
}
