package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/koscakluka/ema-perspective/core/conversations"
	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/events"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

var ErrNotConnected = errors.New("voice channel not connected")

const inboxSize = 1024

// Coordinator owns the conversation. Provider events, user commands, timers
// and enrichment results are processed one at a time by Run, so none of the
// state below needs locking.
type Coordinator struct {
	connect        Connector
	audio          AudioDevice
	gateway        enrichment.Gateway
	matcher        *perspective.Matcher
	timings        Timings
	settings       SessionSettings
	definitionGate bool
	onView         func(View)
	showTranscript bool
	clock          Clock
	runner         Runner

	baseContext context.Context
	inbox       chan message
	done        chan struct{}

	channel    Channel
	connection connectionState
	out        outbox
	session    turnSession
	transcript conversations.Transcript
	store      *perspective.Store
	queue      *proposals.Queue
	summary    string
	definition definitionState
	operations map[enrichOp]*operation
	timers     map[timerKind]*scheduledTimer
	notice     string
}

type connectionState int

const (
	connectionPending connectionState = iota
	connectionOpen
	connectionFailed
	connectionLost
)

func New(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		matcher:        perspective.DefaultMatcher(),
		timings:        DefaultTimings(),
		settings:       SessionSettings{Voice: "alloy", TranscriptionModel: "whisper-1"},
		definitionGate: true,
		clock:          systemClock{},
		baseContext:    context.Background(),
		inbox:          make(chan message, inboxSize),
		done:           make(chan struct{}),
		session:        newTurnSession(),
		operations:     map[enrichOp]*operation{},
		timers:         map[timerKind]*scheduledTimer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = c.goRunner
	}
	for _, op := range enrichOps {
		c.operations[op] = &operation{}
	}

	c.store = perspective.NewStore(perspective.WithMatcher(c.matcher), perspective.WithClock(c.clock.Now))
	c.queue = proposals.NewQueue(proposals.NewGrid(),
		proposals.WithStateMirror(c.store),
		proposals.WithClock(c.clock.Now))
	c.gateway = enrichment.NewResilient(c.gateway,
		enrichment.WithMatcher(c.matcher),
		enrichment.WithKnownOptions(c.knownOptions))
	return c
}

// knownOptions is read from enrichment workers.
func (c *Coordinator) knownOptions() []string {
	return c.store.Lists().Options
}

// Run connects the voice channel and processes messages until ctx ends or
// the channel closes. Only connection failures are returned; everything else
// is recovered inside the loop.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	c.baseContext = ctx

	channel, err := c.open(ctx)
	if err != nil {
		c.connection = connectionFailed
		c.publish()
		return err
	}
	c.attach(channel)
	defer c.detach()

	stopHook := withContextCancelHook(ctx, func() { _ = channel.Close() })
	defer close(stopHook)
	go c.pump(channel)

	c.startSession()
	c.afterMessage()

	ticker := time.NewTicker(c.timings.OutboxFlush)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.out.flush(c.channel)
		case m := <-c.inbox:
			if _, ok := m.(channelClosed); ok {
				if ctx.Err() != nil {
					return nil
				}
				c.connection = connectionLost
				c.publish()
				return fmt.Errorf("voice channel closed: %w", ErrNotConnected)
			}
			c.handle(m)
		}
	}
}

func (c *Coordinator) open(ctx context.Context) (Channel, error) {
	ctx, span := tracer.Start(ctx, "connect voice channel")
	defer span.End()

	c.connection = connectionPending
	c.publish()

	if c.connect == nil {
		span.RecordError(ErrNotConnected)
		span.SetStatus(codes.Error, ErrNotConnected.Error())
		return nil, ErrNotConnected
	}
	channel, err := c.connect(ctx)
	if err != nil {
		err = fmt.Errorf("failed to connect voice channel: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return channel, nil
}

func (c *Coordinator) attach(channel Channel) {
	c.channel = channel
	c.connection = connectionOpen
}

// detach drops everything scoped to the connection.
func (c *Coordinator) detach() {
	c.stopCapture()
	for kind := range c.timers {
		c.cancelTimer(kind)
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			logger.Debug("failed to close voice channel", slog.String("error", err.Error()))
		}
		c.channel = nil
	}
	c.store.Clear()
	c.queue.Clear()
	c.queue.Grid().Clear()
	c.transcript.Clear()
	c.summary = ""
}

func (c *Coordinator) pump(channel Channel) {
	for event := range channel.Events() {
		c.post(providerEvent{event: event})
	}
	c.post(channelClosed{})
}

// post hands a message to the actor. It never blocks once Run has returned.
func (c *Coordinator) post(m message) {
	select {
	case c.inbox <- m:
	case <-c.done:
	}
}

type message interface{ message() }

type providerEvent struct{ event events.Inbound }

type channelClosed struct{}

type audioFrame struct{ audio []byte }

type command struct {
	name string
	run  func()
}

func (providerEvent) message()  {}
func (channelClosed) message()  {}
func (audioFrame) message()     {}
func (command) message()        {}
func (timerFired) message()     {}
func (enrichmentDone) message() {}

func (c *Coordinator) handle(m message) {
	switch m := m.(type) {
	case providerEvent:
		c.route(m.event)
	case command:
		logger.Debug("user command", slog.String("command", m.name), phaseAttr(c.session.phase))
		c.notice = ""
		m.run()
	case audioFrame:
		// Frames arrive every few milliseconds and never change the view.
		c.forwardAudio(m.audio)
		c.out.flush(c.channel)
		return
	case timerFired:
		c.fireTimer(m)
	case enrichmentDone:
		c.completeEnrichment(m)
	case channelClosed:
	}
	c.afterMessage()
}

func (c *Coordinator) afterMessage() {
	c.out.flush(c.channel)
	c.publish()
}

func (c *Coordinator) send(event events.Outbound) {
	c.out.push(event)
}

func (c *Coordinator) do(name string, run func()) {
	c.post(command{name: name, run: run})
}

// HoldStart begins hold-to-talk: the assistant is silenced and the
// microphone streams into a fresh input buffer.
func (c *Coordinator) HoldStart() { c.do("hold_start", c.holdStart) }

// HoldRelease ends hold-to-talk and commits the utterance.
func (c *Coordinator) HoldRelease() { c.do("hold_release", c.holdRelease) }

// Confirm permits the assistant to speak the staged reply.
func (c *Coordinator) Confirm() { c.do("confirm", c.confirm) }

// SendText submits typed input as a user turn.
func (c *Coordinator) SendText(text string) {
	c.do("send_text", func() { c.sendText(text) })
}

func (c *Coordinator) AcceptProposal(id string) {
	c.do("accept_proposal", func() {
		if _, err := c.queue.Accept(id); err != nil {
			c.proposalFailed("accept", id, err)
		}
	})
}

func (c *Coordinator) EditProposal(id string, edit proposals.Edit) {
	c.do("edit_proposal", func() {
		if _, err := c.queue.Edit(id, edit); err != nil {
			c.proposalFailed("edit", id, err)
		}
	})
}

func (c *Coordinator) DiscardProposal(id string) {
	c.do("discard_proposal", func() {
		if err := c.queue.Discard(id); err != nil {
			c.proposalFailed("discard", id, err)
		}
	})
}

// SelectAnchor toggles a life-area anchor on a pending set_cell proposal.
func (c *Coordinator) SelectAnchor(id string, anchor proposals.Anchor) {
	c.do("select_anchor", func() {
		if _, err := c.queue.SelectAnchor(id, anchor); err != nil {
			c.proposalFailed("select anchor on", id, err)
		}
	})
}

// AcceptDefinition closes the definition gate if something was captured.
func (c *Coordinator) AcceptDefinition() { c.do("accept_definition", c.acceptDefinition) }

// SkipDefinition closes the definition gate with an empty pack.
func (c *Coordinator) SkipDefinition() { c.do("skip_definition", c.skipDefinition) }

func (c *Coordinator) proposalFailed(action, id string, err error) {
	logger.Warn("proposal command failed",
		slog.String("action", action),
		slog.String("id", id),
		slog.String("error", err.Error()))
	c.notice = fmt.Sprintf("Could not %s that proposal", action)
}
