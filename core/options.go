package coordinator

import (
	"context"
	"time"

	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/events"
	"github.com/koscakluka/ema-perspective/core/perspective"
)

type CoordinatorOption func(*Coordinator)

// Channel is a connected voice session.
type Channel interface {
	Send(event events.Outbound) error
	Events() <-chan events.Inbound
	Close() error
}

// Connector opens a voice session. Failing to connect is fatal to Run.
type Connector func(ctx context.Context) (Channel, error)

func WithConnector(connect Connector) CoordinatorOption {
	return func(c *Coordinator) {
		c.connect = connect
	}
}

// AudioDevice is the microphone and speaker. Without one the coordinator
// runs text only.
type AudioDevice interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	Play(audio []byte) error
	ClearPlayback()
}

func WithAudioDevice(device AudioDevice) CoordinatorOption {
	return func(c *Coordinator) {
		c.audio = device
	}
}

// WithGateway sets the enrichment gateway. It is always wrapped so proposal
// generation falls back to local heuristics.
func WithGateway(gateway enrichment.Gateway) CoordinatorOption {
	return func(c *Coordinator) {
		c.gateway = gateway
	}
}

func WithMatcher(matcher *perspective.Matcher) CoordinatorOption {
	return func(c *Coordinator) {
		if matcher != nil {
			c.matcher = matcher
		}
	}
}

// Timings are the fixed delays and windows of the turn lifecycle.
type Timings struct {
	// MinHold is the shortest hold that is committed.
	MinHold time.Duration
	// CommitTail is observed after release before the buffer is committed
	// and the microphone detached.
	CommitTail time.Duration
	// CommitWindow bounds how long after a commit a transcription is
	// accepted as the current turn.
	CommitWindow time.Duration
	// ReplyCooldown spaces out replies the coordinator issues on its own.
	ReplyCooldown time.Duration
	// OutboxFlush is how often queued outbound messages are retried.
	OutboxFlush time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		MinHold:       300 * time.Millisecond,
		CommitTail:    250 * time.Millisecond,
		CommitWindow:  2500 * time.Millisecond,
		ReplyCooldown: 1500 * time.Millisecond,
		OutboxFlush:   250 * time.Millisecond,
	}
}

// WithTimings overrides the non-zero fields of the default timings.
func WithTimings(timings Timings) CoordinatorOption {
	return func(c *Coordinator) {
		if timings.MinHold > 0 {
			c.timings.MinHold = timings.MinHold
		}
		if timings.CommitTail > 0 {
			c.timings.CommitTail = timings.CommitTail
		}
		if timings.CommitWindow > 0 {
			c.timings.CommitWindow = timings.CommitWindow
		}
		if timings.ReplyCooldown > 0 {
			c.timings.ReplyCooldown = timings.ReplyCooldown
		}
		if timings.OutboxFlush > 0 {
			c.timings.OutboxFlush = timings.OutboxFlush
		}
	}
}

// SessionSettings configure the voice session on connect.
type SessionSettings struct {
	Voice              string
	TranscriptionModel string
}

func WithSessionSettings(settings SessionSettings) CoordinatorOption {
	return func(c *Coordinator) {
		if settings.Voice != "" {
			c.settings.Voice = settings.Voice
		}
		if settings.TranscriptionModel != "" {
			c.settings.TranscriptionModel = settings.TranscriptionModel
		}
	}
}

// WithDefinitionGate controls whether the conversation starts by capturing
// the problem definition. It is enabled by default.
func WithDefinitionGate(enabled bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.definitionGate = enabled
	}
}

// WithViewCallback is called with a fresh View after every processed message.
// It runs on the coordinator's goroutine and must not block.
func WithViewCallback(onView func(View)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onView = onView
	}
}

// WithTranscriptInView includes the chat transcript in published views.
func WithTranscriptInView(show bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.showTranscript = show
	}
}

// Clock schedules the coordinator's timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func WithClock(clock Clock) CoordinatorOption {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// Runner starts enrichment work. The default runs every call on its own
// goroutine.
type Runner func(name string, run func(ctx context.Context) error)

func WithRunner(runner Runner) CoordinatorOption {
	return func(c *Coordinator) {
		if runner != nil {
			c.runner = runner
		}
	}
}
