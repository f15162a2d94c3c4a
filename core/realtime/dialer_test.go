package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/koscakluka/ema-perspective/core/events"
)

func newSessionServer(t *testing.T, descriptor string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(descriptor))
	}))
	t.Cleanup(server.Close)
	return server
}

type wsServer struct {
	*httptest.Server
	received chan map[string]any
	headers  chan http.Header
}

func newWebsocketServer(t *testing.T) *wsServer {
	t.Helper()
	s := &wsServer{received: make(chan map[string]any, 8), headers: make(chan http.Header, 1)}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Clone()
		header.Set("X-Model", r.URL.Query().Get("model"))
		s.headers <- header

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"session.created","session":{"id":"sess_1"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.created","response":{"id":"resp_1"}}`))

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var decoded map[string]any
			_ = json.Unmarshal(msg, &decoded)
			s.received <- decoded
		}
	}))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

func TestConnectWithSessionURL(t *testing.T) {
	bootstrap := newSessionServer(t, `{"model":"gpt-test","client_secret":{"value":"ek_123","expires_at":1700000000}}`)
	ws := newWebsocketServer(t)

	dialer := NewDialer(WithSessionURL(bootstrap.URL), WithURL(ws.url()))
	session, err := dialer.Connect(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer session.Close()

	header := <-ws.headers
	if got := header.Get("Authorization"); got != "Bearer ek_123" {
		t.Fatalf("expected bearer credential, got %q", got)
	}
	if got := header.Get("OpenAI-Beta"); got != "realtime=v1" {
		t.Fatalf("expected beta header, got %q", got)
	}
	if got := header.Get("X-Model"); got != "gpt-test" {
		t.Fatalf("expected descriptor model, got %q", got)
	}

	first := receive(t, session)
	if first.Kind() != events.KindSessionCreated {
		t.Fatalf("expected session.created, got %q", first.Kind())
	}
	second := receive(t, session)
	if created, ok := second.(events.ResponseCreated); !ok || created.ResponseID != "resp_1" {
		t.Fatalf("expected malformed event to be skipped and response.created delivered, got %#v", second)
	}

	if err := session.Send(events.NewCommitInputBuffer()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	select {
	case msg := <-ws.received:
		if msg["type"] != "input_audio_buffer.commit" {
			t.Fatalf("expected commit, got %v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
}

func TestMintCredential(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/realtime/sessions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"client_secret":{"value":"ek_minted"}}`))
	}))
	defer api.Close()

	credential, err := NewDialer(WithAPIKey("sk-test"), WithAPIBaseURL(api.URL)).Credential(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if credential.Value != "ek_minted" {
		t.Fatalf("expected minted credential, got %q", credential.Value)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected api key auth, got %q", gotAuth)
	}
}

func TestCredentialMissing(t *testing.T) {
	testCases := []struct {
		name   string
		dialer func(t *testing.T) *Dialer
	}{
		{
			name:   "no api key and no session url",
			dialer: func(t *testing.T) *Dialer { return NewDialer() },
		},
		{
			name: "descriptor without secret",
			dialer: func(t *testing.T) *Dialer {
				return NewDialer(WithSessionURL(newSessionServer(t, `{"model":"m"}`).URL))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.dialer(t).Connect(context.Background())
			if !errors.Is(err, ErrCredentialMissing) {
				t.Fatalf("expected ErrCredentialMissing, got %v", err)
			}
		})
	}
}

func TestSendAfterClose(t *testing.T) {
	bootstrap := newSessionServer(t, `{"client_secret":{"value":"ek_1"}}`)
	ws := newWebsocketServer(t)

	session, err := NewDialer(WithSessionURL(bootstrap.URL), WithURL(ws.url())).Connect(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := session.Send(events.NewClearInputBuffer()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-session.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("expected events channel to close")
		}
	}
}

func receive(t *testing.T, session *Session) events.Inbound {
	t.Helper()
	select {
	case event, ok := <-session.Events():
		if !ok {
			t.Fatalf("events channel closed")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return nil
}
