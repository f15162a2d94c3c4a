package events

import (
	"encoding/base64"
	"encoding/json"
)

const (
	// KindSessionUpdate identifies a session configuration update.
	KindSessionUpdate Kind = "session.update"
	// KindResponseCreate identifies a request for a new response.
	KindResponseCreate Kind = "response.create"
	// KindResponseCancel identifies cancellation of an in-flight response.
	KindResponseCancel Kind = "response.cancel"
	// KindInputBufferAppend identifies appended input audio.
	KindInputBufferAppend Kind = "input_audio_buffer.append"
	// KindInputBufferCommit identifies an explicit input buffer commit.
	KindInputBufferCommit Kind = "input_audio_buffer.commit"
	// KindInputBufferClear identifies an input buffer reset.
	KindInputBufferClear Kind = "input_audio_buffer.clear"
	// KindOutputBufferClear identifies a request to drop queued output audio.
	KindOutputBufferClear Kind = "output_audio_buffer.clear"
	// KindConversationItemCreate identifies a new conversation item.
	KindConversationItemCreate Kind = "conversation.item.create"
)

// Tool is a function the provider may call.
type Tool struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

func NewFunctionTool(name, description string, parameters any) Tool {
	return Tool{Type: "function", Name: name, Description: description, Parameters: parameters}
}

type InputTranscription struct {
	Model    string `json:"model"`
	Language string `json:"language,omitempty"`
}

// SessionConfig is the session.update payload. A nil TurnDetection is sent as
// null, which disables server side turn detection.
type SessionConfig struct {
	Modalities              []string            `json:"modalities,omitempty"`
	Instructions            string              `json:"instructions,omitempty"`
	Voice                   string              `json:"voice,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection      `json:"turn_detection"`
	Tools                   []Tool              `json:"tools,omitempty"`
	ToolChoice              string              `json:"tool_choice,omitempty"`
}

type TurnDetection struct {
	Type              string `json:"type"`
	CreateResponse    bool   `json:"create_response"`
	InterruptResponse bool   `json:"interrupt_response"`
}

type UpdateSession struct {
	OutboundBase
	Session SessionConfig
}

func NewUpdateSession(session SessionConfig) UpdateSession {
	return UpdateSession{OutboundBase: NewOutboundBase(KindSessionUpdate), Session: session}
}

func (e UpdateSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		envelope
		Session SessionConfig `json:"session"`
	}{e.envelope(), e.Session})
}

// ResponseConfig is the response.create payload.
type ResponseConfig struct {
	Modalities   []string          `json:"modalities,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	ToolChoice   string            `json:"tool_choice,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type CreateResponse struct {
	OutboundBase
	Response ResponseConfig
}

func NewCreateResponse(response ResponseConfig) CreateResponse {
	return CreateResponse{OutboundBase: NewOutboundBase(KindResponseCreate), Response: response}
}

func (e CreateResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		envelope
		Response ResponseConfig `json:"response"`
	}{e.envelope(), e.Response})
}

type CancelResponse struct {
	OutboundBase
	ResponseID string
}

func NewCancelResponse(responseID string) CancelResponse {
	return CancelResponse{OutboundBase: NewOutboundBase(KindResponseCancel), ResponseID: responseID}
}

func (e CancelResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		envelope
		ResponseID string `json:"response_id,omitempty"`
	}{e.envelope(), e.ResponseID})
}

// AppendInputAudio carries raw PCM16 input audio; it is base64 encoded on the wire.
type AppendInputAudio struct {
	OutboundBase
	Audio []byte
}

func NewAppendInputAudio(audio []byte) AppendInputAudio {
	return AppendInputAudio{OutboundBase: NewOutboundBase(KindInputBufferAppend), Audio: audio}
}

func (e AppendInputAudio) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		envelope
		Audio string `json:"audio"`
	}{e.envelope(), base64.StdEncoding.EncodeToString(e.Audio)})
}

type CommitInputBuffer struct{ OutboundBase }

func NewCommitInputBuffer() CommitInputBuffer {
	return CommitInputBuffer{OutboundBase: NewOutboundBase(KindInputBufferCommit)}
}

func (e CommitInputBuffer) MarshalJSON() ([]byte, error) { return json.Marshal(e.envelope()) }

type ClearInputBuffer struct{ OutboundBase }

func NewClearInputBuffer() ClearInputBuffer {
	return ClearInputBuffer{OutboundBase: NewOutboundBase(KindInputBufferClear)}
}

func (e ClearInputBuffer) MarshalJSON() ([]byte, error) { return json.Marshal(e.envelope()) }

type ClearOutputBuffer struct{ OutboundBase }

func NewClearOutputBuffer() ClearOutputBuffer {
	return ClearOutputBuffer{OutboundBase: NewOutboundBase(KindOutputBufferClear)}
}

func (e ClearOutputBuffer) MarshalJSON() ([]byte, error) { return json.Marshal(e.envelope()) }

// ToolOutput acknowledges a function call.
type ToolOutput struct {
	OutboundBase
	CallID string
	Output string
}

func NewToolOutput(callID, output string) ToolOutput {
	return ToolOutput{OutboundBase: NewOutboundBase(KindConversationItemCreate), CallID: callID, Output: output}
}

func (e ToolOutput) MarshalJSON() ([]byte, error) {
	type item struct {
		Type   string `json:"type"`
		CallID string `json:"call_id"`
		Output string `json:"output"`
	}
	return json.Marshal(struct {
		envelope
		Item item `json:"item"`
	}{e.envelope(), item{Type: "function_call_output", CallID: e.CallID, Output: e.Output}})
}

// CreateUserMessage adds typed user text to the provider conversation.
type CreateUserMessage struct {
	OutboundBase
	Text string
}

func NewCreateUserMessage(text string) CreateUserMessage {
	return CreateUserMessage{OutboundBase: NewOutboundBase(KindConversationItemCreate), Text: text}
}

func (e CreateUserMessage) MarshalJSON() ([]byte, error) {
	type content struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type item struct {
		Type    string    `json:"type"`
		Role    string    `json:"role"`
		Content []content `json:"content"`
	}
	return json.Marshal(struct {
		envelope
		Item item `json:"item"`
	}{e.envelope(), item{Type: "message", Role: "user", Content: []content{{Type: "input_text", Text: e.Text}}}})
}
