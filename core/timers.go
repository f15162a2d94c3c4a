package coordinator

import "time"

type timerKind int

const (
	timerCommitTail timerKind = iota
	timerCommitWindow
	timerReplyCooldown
)

type scheduledTimer struct {
	seq   int
	timer Timer
}

type timerFired struct {
	kind timerKind
	seq  int
}

// schedule replaces any pending timer of the same kind. Timers fire as
// messages, so their handlers run on the actor like everything else.
func (c *Coordinator) schedule(kind timerKind, d time.Duration) {
	t := c.timers[kind]
	if t == nil {
		t = &scheduledTimer{}
		c.timers[kind] = t
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.timer = c.clock.AfterFunc(d, func() { c.post(timerFired{kind: kind, seq: seq}) })
}

func (c *Coordinator) cancelTimer(kind timerKind) {
	t := c.timers[kind]
	if t == nil {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
}

func (c *Coordinator) fireTimer(m timerFired) {
	t := c.timers[m.kind]
	if t == nil || t.seq != m.seq {
		return
	}
	t.timer = nil

	switch m.kind {
	case timerCommitTail:
		c.commit()
	case timerCommitWindow:
		c.expireCommitWindow()
	case timerReplyCooldown:
		c.retryDeferredReply()
	}
}
