package events

import "encoding/json"

const (
	// KindSessionCreated identifies the first event of every session.
	KindSessionCreated Kind = "session.created"
	// KindSessionUpdated identifies acknowledgement of a session update.
	KindSessionUpdated Kind = "session.updated"

	// KindResponseCreated identifies the start of a provider response.
	KindResponseCreated Kind = "response.created"
	// KindResponseTextDelta identifies a streamed text fragment.
	KindResponseTextDelta Kind = "response.text.delta"
	// KindResponseTextDone identifies the complete text of a response part.
	KindResponseTextDone Kind = "response.text.done"
	// KindResponseAudioTranscriptDelta identifies a fragment of the spoken output transcript.
	KindResponseAudioTranscriptDelta Kind = "response.audio_transcript.delta"
	// KindResponseAudioTranscriptDone identifies the complete spoken output transcript.
	KindResponseAudioTranscriptDone Kind = "response.audio_transcript.done"
	// KindResponseAudioDelta identifies an output audio frame.
	KindResponseAudioDelta Kind = "response.audio.delta"
	// KindResponseDone identifies the terminal event of a response.
	KindResponseDone Kind = "response.done"

	// KindInputTranscriptionDelta identifies an interim input transcript fragment.
	KindInputTranscriptionDelta Kind = "conversation.item.input_audio_transcription.delta"
	// KindInputTranscriptionCompleted identifies the final transcript of committed input.
	KindInputTranscriptionCompleted Kind = "conversation.item.input_audio_transcription.completed"
	// KindInputTranscriptionFailed identifies a failed input transcription.
	KindInputTranscriptionFailed Kind = "conversation.item.input_audio_transcription.failed"
	// KindSpeechStarted identifies server detected start of speech.
	KindSpeechStarted Kind = "input_audio_buffer.speech_started"
	// KindSpeechStopped identifies server detected end of speech.
	KindSpeechStopped Kind = "input_audio_buffer.speech_stopped"
	// KindInputBufferCommitted identifies a committed input buffer.
	KindInputBufferCommitted Kind = "input_audio_buffer.committed"
	// KindInputBufferCleared identifies a cleared input buffer.
	KindInputBufferCleared Kind = "input_audio_buffer.cleared"

	// KindOutputBufferStarted identifies the start of output audio.
	KindOutputBufferStarted Kind = "output_audio_buffer.started"
	// KindOutputBufferCleared identifies a cleared output audio buffer.
	KindOutputBufferCleared Kind = "output_audio_buffer.cleared"

	// KindToolArgumentsDelta identifies a fragment of function call arguments.
	KindToolArgumentsDelta Kind = "response.function_call_arguments.delta"
	// KindToolArgumentsDone identifies complete function call arguments.
	KindToolArgumentsDone Kind = "response.function_call_arguments.done"

	// KindError identifies a provider side error.
	KindError Kind = "error"
)

// SessionCreated is the first event of a session.
type SessionCreated struct {
	Base
	SessionID string
	Model     string
}

func NewSessionCreated(sessionID, model string) SessionCreated {
	return SessionCreated{Base: NewBase(KindSessionCreated), SessionID: sessionID, Model: model}
}

// SessionUpdated acknowledges a session update.
type SessionUpdated struct {
	Base
	SessionID string
}

func NewSessionUpdated(sessionID string) SessionUpdated {
	return SessionUpdated{Base: NewBase(KindSessionUpdated), SessionID: sessionID}
}

// ResponseCreated marks the start of a response, requested or not.
type ResponseCreated struct {
	Base
	ResponseID string
}

func NewResponseCreated(responseID string) ResponseCreated {
	return ResponseCreated{Base: NewBase(KindResponseCreated), ResponseID: responseID}
}

// ResponseTextDelta carries a streamed text fragment.
type ResponseTextDelta struct {
	Base
	ResponseID string
	Delta      string
}

func NewResponseTextDelta(responseID, delta string) ResponseTextDelta {
	return ResponseTextDelta{Base: NewBase(KindResponseTextDelta), ResponseID: responseID, Delta: delta}
}

// ResponseTextDone carries the complete text of a response part.
type ResponseTextDone struct {
	Base
	ResponseID string
	Text       string
}

func NewResponseTextDone(responseID, text string) ResponseTextDone {
	return ResponseTextDone{Base: NewBase(KindResponseTextDone), ResponseID: responseID, Text: text}
}

// ResponseAudioTranscriptDelta carries a fragment of what the assistant says.
type ResponseAudioTranscriptDelta struct {
	Base
	ResponseID string
	Delta      string
}

func NewResponseAudioTranscriptDelta(responseID, delta string) ResponseAudioTranscriptDelta {
	return ResponseAudioTranscriptDelta{Base: NewBase(KindResponseAudioTranscriptDelta), ResponseID: responseID, Delta: delta}
}

// ResponseAudioTranscriptDone carries the full transcript of spoken output.
type ResponseAudioTranscriptDone struct {
	Base
	ResponseID string
	Transcript string
}

func NewResponseAudioTranscriptDone(responseID, transcript string) ResponseAudioTranscriptDone {
	return ResponseAudioTranscriptDone{Base: NewBase(KindResponseAudioTranscriptDone), ResponseID: responseID, Transcript: transcript}
}

// ResponseAudioDelta carries a decoded PCM16 output audio frame.
type ResponseAudioDelta struct {
	Base
	ResponseID string
	Audio      []byte
}

func NewResponseAudioDelta(responseID string, audio []byte) ResponseAudioDelta {
	return ResponseAudioDelta{Base: NewBase(KindResponseAudioDelta), ResponseID: responseID, Audio: audio}
}

// ResponseDone is the terminal event of a response. Status is one of
// completed, cancelled, failed or incomplete.
type ResponseDone struct {
	Base
	ResponseID string
	Status     string
}

func NewResponseDone(responseID, status string) ResponseDone {
	return ResponseDone{Base: NewBase(KindResponseDone), ResponseID: responseID, Status: status}
}

// InputTranscriptionDelta carries an interim input transcript fragment.
type InputTranscriptionDelta struct {
	Base
	ItemID string
	Delta  string
}

func NewInputTranscriptionDelta(itemID, delta string) InputTranscriptionDelta {
	return InputTranscriptionDelta{Base: NewBase(KindInputTranscriptionDelta), ItemID: itemID, Delta: delta}
}

// InputTranscriptionCompleted carries the final transcript of committed input.
type InputTranscriptionCompleted struct {
	Base
	ItemID     string
	Transcript string
}

func NewInputTranscriptionCompleted(itemID, transcript string) InputTranscriptionCompleted {
	return InputTranscriptionCompleted{Base: NewBase(KindInputTranscriptionCompleted), ItemID: itemID, Transcript: transcript}
}

// InputTranscriptionFailed reports that committed input could not be transcribed.
type InputTranscriptionFailed struct {
	Base
	ItemID  string
	Message string
}

func NewInputTranscriptionFailed(itemID, message string) InputTranscriptionFailed {
	return InputTranscriptionFailed{Base: NewBase(KindInputTranscriptionFailed), ItemID: itemID, Message: message}
}

type SpeechStarted struct {
	Base
	ItemID string
}

func NewSpeechStarted(itemID string) SpeechStarted {
	return SpeechStarted{Base: NewBase(KindSpeechStarted), ItemID: itemID}
}

type SpeechStopped struct {
	Base
	ItemID string
}

func NewSpeechStopped(itemID string) SpeechStopped {
	return SpeechStopped{Base: NewBase(KindSpeechStopped), ItemID: itemID}
}

type InputBufferCommitted struct {
	Base
	ItemID string
}

func NewInputBufferCommitted(itemID string) InputBufferCommitted {
	return InputBufferCommitted{Base: NewBase(KindInputBufferCommitted), ItemID: itemID}
}

type InputBufferCleared struct{ Base }

func NewInputBufferCleared() InputBufferCleared {
	return InputBufferCleared{Base: NewBase(KindInputBufferCleared)}
}

type OutputBufferStarted struct {
	Base
	ResponseID string
}

func NewOutputBufferStarted(responseID string) OutputBufferStarted {
	return OutputBufferStarted{Base: NewBase(KindOutputBufferStarted), ResponseID: responseID}
}

type OutputBufferCleared struct {
	Base
	ResponseID string
}

func NewOutputBufferCleared(responseID string) OutputBufferCleared {
	return OutputBufferCleared{Base: NewBase(KindOutputBufferCleared), ResponseID: responseID}
}

// ToolArgumentsDelta carries a fragment of a function call's JSON arguments.
type ToolArgumentsDelta struct {
	Base
	ResponseID string
	CallID     string
	Delta      string
}

func NewToolArgumentsDelta(responseID, callID, delta string) ToolArgumentsDelta {
	return ToolArgumentsDelta{Base: NewBase(KindToolArgumentsDelta), ResponseID: responseID, CallID: callID, Delta: delta}
}

// ToolArgumentsDone carries the tool name and, usually, the full arguments.
type ToolArgumentsDone struct {
	Base
	ResponseID string
	CallID     string
	Name       string
	Arguments  string
}

func NewToolArgumentsDone(responseID, callID, name, arguments string) ToolArgumentsDone {
	return ToolArgumentsDone{Base: NewBase(KindToolArgumentsDone), ResponseID: responseID, CallID: callID, Name: name, Arguments: arguments}
}

// Error is a provider reported failure. EventID refers to the client event
// that caused it, when known.
type Error struct {
	Base
	Type    string
	Code    string
	Message string
	EventID string
}

func NewError(errType, code, message string) Error {
	return Error{Base: NewBase(KindError), Type: errType, Code: code, Message: message}
}

// Unknown carries any event type this package does not model.
type Unknown struct {
	Base
	Type string
	Raw  json.RawMessage
}

func NewUnknown(eventType string, raw json.RawMessage) Unknown {
	return Unknown{Base: NewBase(Kind(eventType)), Type: eventType, Raw: raw}
}
