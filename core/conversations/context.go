package conversations

import (
	"strings"
	"time"
)

// DefaultWindowSize is how many of the most recent turns are fed to every
// enrichment call.
const DefaultWindowSize = 30

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single finalized utterance in the conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the append-only, ordered sequence of finalized turns.
//
// It is owned by a single actor and is not safe for concurrent use.
type Transcript struct {
	turns []Turn
}

// Append adds a turn, ignoring blank text. It reports whether a turn was
// added.
func (t *Transcript) Append(role Role, text string, at time.Time) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	t.turns = append(t.turns, Turn{Role: role, Text: text, Timestamp: at})
	return true
}

func (t *Transcript) Len() int { return len(t.turns) }

// Window returns a copy of the most recent n turns, oldest first.
func (t *Transcript) Window(n int) []Turn {
	if n <= 0 || n > len(t.turns) {
		n = len(t.turns)
	}
	window := make([]Turn, n)
	copy(window, t.turns[len(t.turns)-n:])
	return window
}

// LastOf returns the most recent turn with the given role.
func (t *Transcript) LastOf(role Role) (Turn, bool) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == role {
			return t.turns[i], true
		}
	}
	return Turn{}, false
}

// Values is an iterator that goes over all the stored turns starting from the
// earliest towards the latest
func (t *Transcript) Values(yield func(Turn) bool) {
	for _, turn := range t.turns {
		if !yield(turn) {
			return
		}
	}
}

func (t *Transcript) Clear() {
	t.turns = nil
}
