package events

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEmitsExpectedVariants(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected Kind
	}{
		{name: "session created", raw: `{"type":"session.created","session":{"id":"sess_1","model":"m"}}`, expected: KindSessionCreated},
		{name: "response created", raw: `{"type":"response.created","response":{"id":"resp_1"}}`, expected: KindResponseCreated},
		{name: "text delta", raw: `{"type":"response.text.delta","response_id":"resp_1","delta":"hi"}`, expected: KindResponseTextDelta},
		{name: "output text delta alias", raw: `{"type":"response.output_text.delta","response_id":"resp_1","delta":"hi"}`, expected: KindResponseTextDelta},
		{name: "audio transcript delta", raw: `{"type":"response.audio_transcript.delta","response_id":"resp_1","delta":"hi"}`, expected: KindResponseAudioTranscriptDelta},
		{name: "output audio transcript done alias", raw: `{"type":"response.output_audio_transcript.done","response_id":"resp_1","transcript":"hi"}`, expected: KindResponseAudioTranscriptDone},
		{name: "audio delta", raw: `{"type":"response.audio.delta","response_id":"resp_1","delta":"AAE="}`, expected: KindResponseAudioDelta},
		{name: "response done", raw: `{"type":"response.done","response":{"id":"resp_1","status":"completed"}}`, expected: KindResponseDone},
		{name: "transcription completed", raw: `{"type":"conversation.item.input_audio_transcription.completed","item_id":"item_1","transcript":"hello"}`, expected: KindInputTranscriptionCompleted},
		{name: "speech started", raw: `{"type":"input_audio_buffer.speech_started","item_id":"item_1"}`, expected: KindSpeechStarted},
		{name: "buffer cleared", raw: `{"type":"input_audio_buffer.cleared"}`, expected: KindInputBufferCleared},
		{name: "output cleared", raw: `{"type":"output_audio_buffer.cleared","response_id":"resp_1"}`, expected: KindOutputBufferCleared},
		{name: "tool delta", raw: `{"type":"response.function_call_arguments.delta","call_id":"call_1","delta":"{"}`, expected: KindToolArgumentsDelta},
		{name: "tool done", raw: `{"type":"response.function_call_arguments.done","call_id":"call_1","name":"t","arguments":"{}"}`, expected: KindToolArgumentsDone},
		{name: "error", raw: `{"type":"error","error":{"type":"invalid_request_error","code":"input_audio_buffer_commit_empty","message":"buffer too small"}}`, expected: KindError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			event, err := Parse([]byte(testCase.raw))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestParseExtractsFields(t *testing.T) {
	event, _ := Parse([]byte(`{"type":"response.created","response":{"id":"resp_9"}}`))
	if created, ok := event.(ResponseCreated); !ok || created.ResponseID != "resp_9" {
		t.Fatalf("expected ResponseCreated resp_9, got %#v", event)
	}

	event, _ = Parse([]byte(`{"type":"response.audio.delta","response_id":"resp_9","delta":"AAE="}`))
	audio, ok := event.(ResponseAudioDelta)
	if !ok || len(audio.Audio) != 2 || audio.Audio[1] != 1 {
		t.Fatalf("expected decoded audio, got %#v", event)
	}

	event, _ = Parse([]byte(`{"type":"error","error":{"code":"input_audio_buffer_commit_empty","message":"empty","event_id":"evt_1"}}`))
	providerErr, ok := event.(Error)
	if !ok || providerErr.Code != "input_audio_buffer_commit_empty" || providerErr.EventID != "evt_1" {
		t.Fatalf("expected error fields, got %#v", event)
	}
}

func TestParseUnknownAndMalformed(t *testing.T) {
	event, err := Parse([]byte(`{"type":"rate_limits.updated","rate_limits":[]}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	unknown, ok := event.(Unknown)
	if !ok || unknown.Type != "rate_limits.updated" {
		t.Fatalf("expected Unknown, got %#v", event)
	}

	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed json")
	}
	if _, err := Parse([]byte(`{"foo":1}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := Parse([]byte(`{"type":"response.audio.delta","delta":"%%%"}`)); err == nil {
		t.Fatalf("expected error for invalid audio")
	}
}

func TestOutboundWireFormat(t *testing.T) {
	testCases := []struct {
		name     string
		event    Outbound
		contains []string
	}{
		{name: "create response", event: NewCreateResponse(ResponseConfig{Modalities: []string{"audio", "text"}, Instructions: "hi"}), contains: []string{`"type":"response.create"`, `"instructions":"hi"`}},
		{name: "cancel response", event: NewCancelResponse("resp_1"), contains: []string{`"type":"response.cancel"`, `"response_id":"resp_1"`}},
		{name: "commit", event: NewCommitInputBuffer(), contains: []string{`"type":"input_audio_buffer.commit"`}},
		{name: "clear input", event: NewClearInputBuffer(), contains: []string{`"type":"input_audio_buffer.clear"`}},
		{name: "clear output", event: NewClearOutputBuffer(), contains: []string{`"type":"output_audio_buffer.clear"`}},
		{name: "append audio", event: NewAppendInputAudio([]byte{0, 1}), contains: []string{`"audio":"AAE="`}},
		{name: "tool output", event: NewToolOutput("call_1", `{"ok":true}`), contains: []string{`"type":"function_call_output"`, `"call_id":"call_1"`}},
		{name: "user message", event: NewCreateUserMessage("hello"), contains: []string{`"role":"user"`, `"type":"input_text"`, `"text":"hello"`}},
		{name: "session update disables turn detection", event: NewUpdateSession(SessionConfig{Instructions: "x"}), contains: []string{`"type":"session.update"`, `"turn_detection":null`}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			data, err := json.Marshal(testCase.event)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			wire := string(data)
			if !strings.Contains(wire, `"event_id":"evt_`) {
				t.Fatalf("expected event id in %s", wire)
			}
			for _, want := range testCase.contains {
				if !strings.Contains(wire, want) {
					t.Fatalf("expected %s in %s", want, wire)
				}
			}
		})
	}
}

func TestOutboundEventIDsAreUnique(t *testing.T) {
	a, b := NewCommitInputBuffer(), NewCommitInputBuffer()
	if a.EventID() == b.EventID() {
		t.Fatalf("expected distinct event ids, both were %q", a.EventID())
	}
}
