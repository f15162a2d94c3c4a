package events

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// aliases maps renamed provider event types to the kind they are parsed as.
var aliases = map[string]Kind{
	"response.output_text.delta":             KindResponseTextDelta,
	"response.output_text.done":              KindResponseTextDone,
	"response.output_audio_transcript.delta": KindResponseAudioTranscriptDelta,
	"response.output_audio_transcript.done":  KindResponseAudioTranscriptDone,
	"response.output_audio.delta":            KindResponseAudioDelta,
}

type wireEvent struct {
	Type       string `json:"type"`
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	CallID     string `json:"call_id"`
	Name       string `json:"name"`
	Delta      string `json:"delta"`
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
	Arguments  string `json:"arguments"`

	Session *struct {
		ID    string `json:"id"`
		Model string `json:"model"`
	} `json:"session"`
	Response *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"response"`
	Error *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		EventID string `json:"event_id"`
	} `json:"error"`
}

// Parse decodes one provider message into its typed variant. Unrecognised
// types yield Unknown; only malformed JSON is an error.
func Parse(raw []byte) (Inbound, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if w.Type == "" {
		return nil, errors.New("event has no type")
	}

	kind := Kind(w.Type)
	if alias, ok := aliases[w.Type]; ok {
		kind = alias
	}

	switch kind {
	case KindSessionCreated:
		e := NewSessionCreated("", "")
		if w.Session != nil {
			e.SessionID, e.Model = w.Session.ID, w.Session.Model
		}
		return e, nil
	case KindSessionUpdated:
		e := NewSessionUpdated("")
		if w.Session != nil {
			e.SessionID = w.Session.ID
		}
		return e, nil
	case KindResponseCreated:
		return NewResponseCreated(w.responseID()), nil
	case KindResponseTextDelta:
		return NewResponseTextDelta(w.ResponseID, w.Delta), nil
	case KindResponseTextDone:
		return NewResponseTextDone(w.ResponseID, w.Text), nil
	case KindResponseAudioTranscriptDelta:
		return NewResponseAudioTranscriptDelta(w.ResponseID, w.Delta), nil
	case KindResponseAudioTranscriptDone:
		return NewResponseAudioTranscriptDone(w.ResponseID, w.Transcript), nil
	case KindResponseAudioDelta:
		audio, err := base64.StdEncoding.DecodeString(w.Delta)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audio delta: %w", err)
		}
		return NewResponseAudioDelta(w.ResponseID, audio), nil
	case KindResponseDone:
		e := NewResponseDone(w.responseID(), "")
		if w.Response != nil {
			e.Status = w.Response.Status
		}
		return e, nil
	case KindInputTranscriptionDelta:
		return NewInputTranscriptionDelta(w.ItemID, w.Delta), nil
	case KindInputTranscriptionCompleted:
		return NewInputTranscriptionCompleted(w.ItemID, w.Transcript), nil
	case KindInputTranscriptionFailed:
		e := NewInputTranscriptionFailed(w.ItemID, "")
		if w.Error != nil {
			e.Message = w.Error.Message
		}
		return e, nil
	case KindSpeechStarted:
		return NewSpeechStarted(w.ItemID), nil
	case KindSpeechStopped:
		return NewSpeechStopped(w.ItemID), nil
	case KindInputBufferCommitted:
		return NewInputBufferCommitted(w.ItemID), nil
	case KindInputBufferCleared:
		return NewInputBufferCleared(), nil
	case KindOutputBufferStarted:
		return NewOutputBufferStarted(w.ResponseID), nil
	case KindOutputBufferCleared:
		return NewOutputBufferCleared(w.ResponseID), nil
	case KindToolArgumentsDelta:
		return NewToolArgumentsDelta(w.ResponseID, w.CallID, w.Delta), nil
	case KindToolArgumentsDone:
		return NewToolArgumentsDone(w.ResponseID, w.CallID, w.Name, w.Arguments), nil
	case KindError:
		e := NewError("", "", "")
		if w.Error != nil {
			e.Type, e.Code, e.Message, e.EventID = w.Error.Type, w.Error.Code, w.Error.Message, w.Error.EventID
		}
		return e, nil
	}

	return NewUnknown(w.Type, append(json.RawMessage(nil), raw...)), nil
}

func (w wireEvent) responseID() string {
	if w.Response != nil && w.Response.ID != "" {
		return w.Response.ID
	}
	return w.ResponseID
}
