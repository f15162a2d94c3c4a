package coordinator

import (
	"strings"
	"time"
)

// turnSession is the coordinator's view of whose turn it is.
type turnSession struct {
	phase Phase

	// responseID is the provider response currently allowed to speak.
	responseID string
	// replyRequested is set between sending response.create and seeing the
	// matching response.created.
	replyRequested bool
	// requestEventID is the client event id of that response.create.
	requestEventID string
	requestedKind  replyKind
	activeKind     replyKind
	reply          replyText
	// deferredReply waits for the cooldown timer.
	deferredReply replyKind
	lastReplyAt   time.Time

	// staged is a candidate reply waiting for confirmation.
	staged bool
	// confirmed is the user's permission for the assistant to speak next.
	confirmed       bool
	pendingUserTurn bool

	holdStartedAt time.Time
	capturing     bool
	// manualCommit marks a committed buffer whose transcript has not
	// arrived yet; commitDeadline closes its acceptance window.
	manualCommit   bool
	commitDeadline time.Time

	muted     bool
	cancelled map[string]bool

	toolArgs map[string]*strings.Builder

	lastUserUtterance string
}

func newTurnSession() turnSession {
	return turnSession{
		cancelled: map[string]bool{},
		toolArgs:  map[string]*strings.Builder{},
	}
}

// replyText assembles the assistant's words for one response. The spoken
// transcript wins over text output when both are present.
type replyText struct {
	transcript strings.Builder
	text       strings.Builder
	final      string
}

func (r *replyText) String() string {
	if r.final != "" {
		return r.final
	}
	if r.transcript.Len() > 0 {
		return r.transcript.String()
	}
	return r.text.String()
}

func (r *replyText) reset() {
	r.transcript.Reset()
	r.text.Reset()
	r.final = ""
}
