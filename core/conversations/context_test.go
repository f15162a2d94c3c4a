package conversations

import (
	"testing"
	"time"
)

func TestAppendIgnoresBlankText(t *testing.T) {
	transcript := Transcript{}
	if transcript.Append(RoleUser, "   ", time.Now()) {
		t.Fatalf("expected blank text to be ignored")
	}
	if transcript.Len() != 0 {
		t.Fatalf("expected empty transcript, got %d turns", transcript.Len())
	}
}

func TestWindowReturnsMostRecentTurns(t *testing.T) {
	transcript := Transcript{}
	now := time.Now()
	for _, text := range []string{"one", "two", "three", "four"} {
		transcript.Append(RoleUser, text, now)
	}

	window := transcript.Window(2)
	if len(window) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(window))
	}
	if window[0].Text != "three" || window[1].Text != "four" {
		t.Fatalf("expected [three four], got [%s %s]", window[0].Text, window[1].Text)
	}

	window[0].Text = "changed"
	if last := transcript.Window(2)[0].Text; last != "three" {
		t.Fatalf("expected window to be a copy, transcript now has %q", last)
	}
}

func TestLastOf(t *testing.T) {
	transcript := Transcript{}
	now := time.Now()
	transcript.Append(RoleUser, "question", now)
	transcript.Append(RoleAssistant, "answer", now)

	turn, ok := transcript.LastOf(RoleUser)
	if !ok || turn.Text != "question" {
		t.Fatalf("expected last user turn %q, got %q (found %t)", "question", turn.Text, ok)
	}

	transcript.Clear()
	if _, ok := transcript.LastOf(RoleAssistant); ok {
		t.Fatalf("expected no turns after clear")
	}
}
