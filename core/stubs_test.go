package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/ema-perspective/core/enrichment"
	"github.com/koscakluka/ema-perspective/core/events"
	"github.com/koscakluka/ema-perspective/core/perspective"
	"github.com/koscakluka/ema-perspective/core/proposals"
)

type fakeChannel struct {
	mu      sync.Mutex
	sent    []events.Outbound
	inbound chan events.Inbound
	failing bool
	closed  bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{inbound: make(chan events.Inbound, 16)}
}

func (f *fakeChannel) Send(event events.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("channel not ready")
	}
	f.sent = append(f.sent, event)
	return nil
}

func (f *fakeChannel) Events() <-chan events.Inbound { return f.inbound }

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.inbound)
	}
	return nil
}

func (f *fakeChannel) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeChannel) count(kind events.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.sent {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

func (f *fakeChannel) toolOutputs() []events.ToolOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.ToolOutput
	for _, e := range f.sent {
		if o, ok := e.(events.ToolOutput); ok {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeChannel) cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, e := range f.sent {
		if c, ok := e.(events.CancelResponse); ok {
			ids = append(ids, c.ResponseID)
		}
	}
	return ids
}

func (f *fakeChannel) lastOf(kind events.Kind) (events.Outbound, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Kind() == kind {
			return f.sent[i], true
		}
	}
	return nil, false
}

func (f *fakeChannel) kinds() []events.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]events.Kind, 0, len(f.sent))
	for _, e := range f.sent {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

type fakeTimer struct {
	at      time.Time
	run     func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now.Add(d), run: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at.After(c.now) {
			continue
		}
		t.fired = true
		t.run()
	}
}

type fakeAudio struct {
	played   [][]byte
	clears   int
	starts   int
	stops    int
	capturer func([]byte)
}

func (a *fakeAudio) StartCapture(_ context.Context, onAudio func([]byte)) error {
	a.starts++
	a.capturer = onAudio
	return nil
}

func (a *fakeAudio) StopCapture() error {
	a.stops++
	a.capturer = nil
	return nil
}

func (a *fakeAudio) Play(audio []byte) error {
	a.played = append(a.played, audio)
	return nil
}

func (a *fakeAudio) ClearPlayback() { a.clears++ }

type stubGateway struct {
	summary   string
	state     perspective.Lists
	proposals []proposals.Proposal
	err       error

	calls    map[enrichOp]int
	requests map[enrichOp][]enrichment.Request
}

func newStubGateway() *stubGateway {
	return &stubGateway{calls: map[enrichOp]int{}, requests: map[enrichOp][]enrichment.Request{}}
}

func (g *stubGateway) record(op enrichOp, req enrichment.Request) {
	g.calls[op]++
	g.requests[op] = append(g.requests[op], req)
}

func (g *stubGateway) Summarize(_ context.Context, req enrichment.Request) (string, error) {
	g.record(opSummarize, req)
	return g.summary, g.err
}

func (g *stubGateway) ExtractState(_ context.Context, req enrichment.Request) (perspective.Lists, error) {
	g.record(opExtractState, req)
	return g.state, g.err
}

func (g *stubGateway) ProposeActions(_ context.Context, req enrichment.Request) ([]proposals.Proposal, error) {
	g.record(opProposeActions, req)
	return g.proposals, g.err
}

// panickingGateway is safe to call from several goroutines.
type panickingGateway struct{}

func (panickingGateway) Summarize(context.Context, enrichment.Request) (string, error) {
	panic("summarizer exploded")
}

func (panickingGateway) ExtractState(context.Context, enrichment.Request) (perspective.Lists, error) {
	return perspective.Lists{}, nil
}

func (panickingGateway) ProposeActions(context.Context, enrichment.Request) ([]proposals.Proposal, error) {
	return nil, nil
}

func syncRunner(_ string, run func(context.Context) error) {
	_ = run(context.Background())
}

// queuedRunner holds enrichment work until the test releases it.
type queuedRunner struct {
	jobs []func(context.Context) error
}

func (r *queuedRunner) run(_ string, job func(context.Context) error) {
	r.jobs = append(r.jobs, job)
}

func (r *queuedRunner) releaseAll(c *Coordinator) {
	for len(r.jobs) > 0 {
		job := r.jobs[0]
		r.jobs = r.jobs[1:]
		_ = job(context.Background())
		drain(c)
	}
}

type harness struct {
	c       *Coordinator
	channel *fakeChannel
	clock   *fakeClock
	audio   *fakeAudio
	gateway *stubGateway
}

func newHarness(t *testing.T, opts ...CoordinatorOption) *harness {
	t.Helper()
	h := &harness{
		channel: newFakeChannel(),
		clock:   newFakeClock(),
		audio:   &fakeAudio{},
		gateway: newStubGateway(),
	}
	base := []CoordinatorOption{
		WithClock(h.clock),
		WithRunner(syncRunner),
		WithAudioDevice(h.audio),
		WithGateway(h.gateway),
		WithDefinitionGate(false),
	}
	h.c = New(append(base, opts...)...)
	h.c.attach(h.channel)
	h.c.startSession()
	h.c.afterMessage()
	return h
}

// drain processes everything posted to the coordinator so far.
func drain(c *Coordinator) {
	for {
		select {
		case m := <-c.inbox:
			c.handle(m)
		default:
			return
		}
	}
}

func (h *harness) deliver(evs ...events.Inbound) {
	for _, e := range evs {
		h.c.handle(providerEvent{event: e})
	}
	drain(h.c)
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	drain(h.c)
}

// holdAndCommit runs a hold-to-talk cycle ending in a committed buffer.
func (h *harness) holdAndCommit() {
	h.c.HoldStart()
	drain(h.c)
	h.advance(h.c.timings.MinHold + 200*time.Millisecond)
	h.c.HoldRelease()
	drain(h.c)
	h.advance(h.c.timings.CommitTail)
}

func (h *harness) speak(text string) {
	h.holdAndCommit()
	h.deliver(events.NewInputTranscriptionCompleted("item_1", text))
}

func (h *harness) typeText(text string) {
	h.c.SendText(text)
	drain(h.c)
}

// reply lets the staged reply play out as response id.
func (h *harness) reply(id, text string) {
	h.deliver(
		events.NewResponseCreated(id),
		events.NewResponseAudioTranscriptDelta(id, text),
		events.NewResponseDone(id, "completed"),
	)
}
