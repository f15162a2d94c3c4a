package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/koscakluka/ema-perspective/core/events"
)

var ErrSessionClosed = errors.New("realtime session closed")

const eventBufferSize = 256

// Session is an open realtime channel. Sends are serialized; inbound events
// are parsed into typed variants and delivered in arrival order on Events,
// which is closed when the connection ends.
type Session struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	events    chan events.Inbound
	closed    chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn) *Session {
	s := &Session{
		conn:   conn,
		events: make(chan events.Inbound, eventBufferSize),
		closed: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Session) Events() <-chan events.Inbound {
	return s.events
}

func (s *Session) Send(event events.Outbound) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event.Kind(), err)
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", event.Kind(), err)
	}
	return nil
}

func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.connMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.connMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Session) readLoop() {
	defer close(s.events)
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !s.isClosed() {
				logger.Error("realtime read failed", slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		event, err := events.Parse(msg)
		if err != nil {
			logger.Warn("dropping malformed realtime event", slog.String("error", err.Error()))
			continue
		}

		select {
		case s.events <- event:
		case <-s.closed:
			return
		}
	}
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
