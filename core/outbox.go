package coordinator

import (
	"log/slog"

	"github.com/koscakluka/ema-perspective/core/events"
)

// outbox holds outbound messages until the channel accepts them. Messages
// leave strictly in the order they were queued.
type outbox struct {
	queue []events.Outbound
	// failing suppresses repeated logging while the channel keeps rejecting.
	failing bool
}

func (o *outbox) push(event events.Outbound) {
	o.queue = append(o.queue, event)
}

func (o *outbox) len() int { return len(o.queue) }

// flush sends queued messages until the first failure.
func (o *outbox) flush(channel Channel) {
	if channel == nil {
		return
	}
	for len(o.queue) > 0 {
		event := o.queue[0]
		if err := channel.Send(event); err != nil {
			if !o.failing {
				logger.Warn("outbound message deferred",
					slog.String("type", string(event.Kind())),
					slog.Int("queued", len(o.queue)),
					slog.String("error", err.Error()))
			}
			o.failing = true
			return
		}
		o.failing = false
		o.queue[0] = nil
		o.queue = o.queue[1:]
	}
}
