package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind is the provider wire type of an event, e.g. "response.created".
type Kind string

type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Inbound is the closed set of events received from the voice channel.
// Only types in this package implement it.
type Inbound interface {
	Event
	inbound()
}

// Outbound is a control message sent to the voice channel.
type Outbound interface {
	Event
	EventID() string
	json.Marshaler
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

func (Base) inbound() {}

// OutboundBase carries the kind and a fresh client event id.
type OutboundBase struct {
	kind      Kind
	eventID   string
	timestamp time.Time
}

func NewOutboundBase(kind Kind) OutboundBase {
	return OutboundBase{kind: kind, eventID: "evt_" + uuid.NewString(), timestamp: time.Now()}
}

func (b OutboundBase) Kind() Kind {
	return b.kind
}

func (b OutboundBase) Timestamp() time.Time {
	return b.timestamp
}

func (b OutboundBase) EventID() string {
	return b.eventID
}

// envelope is the common wire header of every outbound message.
type envelope struct {
	EventID string `json:"event_id"`
	Type    Kind   `json:"type"`
}

func (b OutboundBase) envelope() envelope {
	return envelope{EventID: b.eventID, Type: b.kind}
}
