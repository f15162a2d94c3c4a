package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultModel      = "gpt-4o-realtime-preview"
	DefaultURL        = "wss://api.openai.com/v1/realtime"
	DefaultAPIBaseURL = "https://api.openai.com"
	DefaultVoice      = "alloy"
)

// Dialer establishes realtime sessions: it acquires a short lived credential,
// then opens the websocket with it.
type Dialer struct {
	apiKey     string
	model      string
	voice      string
	url        string
	sessionURL string
	apiBaseURL string

	httpClient *http.Client
	wsDialer   *websocket.Dialer
}

type DialerOption func(*Dialer)

// WithAPIKey lets the dialer mint credentials itself.
func WithAPIKey(apiKey string) DialerOption {
	return func(d *Dialer) { d.apiKey = apiKey }
}

// WithSessionURL makes the dialer fetch credentials from a bootstrap
// endpoint instead of minting them.
func WithSessionURL(sessionURL string) DialerOption {
	return func(d *Dialer) { d.sessionURL = sessionURL }
}

func WithModel(model string) DialerOption {
	return func(d *Dialer) {
		if model != "" {
			d.model = model
		}
	}
}

func WithVoice(voice string) DialerOption {
	return func(d *Dialer) {
		if voice != "" {
			d.voice = voice
		}
	}
}

func WithURL(rawURL string) DialerOption {
	return func(d *Dialer) {
		if rawURL != "" {
			d.url = rawURL
		}
	}
}

func WithAPIBaseURL(baseURL string) DialerOption {
	return func(d *Dialer) {
		if baseURL != "" {
			d.apiBaseURL = baseURL
		}
	}
}

func WithHTTPClient(client *http.Client) DialerOption {
	return func(d *Dialer) {
		if client != nil {
			d.httpClient = client
		}
	}
}

func NewDialer(opts ...DialerOption) *Dialer {
	d := &Dialer{
		model:      DefaultModel,
		voice:      DefaultVoice,
		url:        DefaultURL,
		apiBaseURL: DefaultAPIBaseURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		wsDialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dialer) Credential(ctx context.Context) (Credential, error) {
	if d.sessionURL != "" {
		return d.fetchCredential(ctx)
	}
	return d.mintCredential(ctx)
}

// Connect acquires a credential and opens a session. Any failure here is
// fatal for the session; callers are expected to surface it, not retry.
func (d *Dialer) Connect(ctx context.Context) (*Session, error) {
	ctx, span := tracer.Start(ctx, "connect realtime session")
	defer span.End()

	credential, err := d.Credential(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to acquire credential: %w", err)
	}

	model := d.model
	if credential.Model != "" {
		model = credential.Model
	}
	span.SetAttributes(attribute.String("session.model", model))

	target, err := url.Parse(d.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("invalid realtime url: %w", err)
	}
	query := target.Query()
	query.Set("model", model)
	target.RawQuery = query.Encode()

	conn, _, err := d.wsDialer.DialContext(ctx, target.String(), http.Header{
		"Authorization": {"Bearer " + credential.Value},
		"OpenAI-Beta":   {"realtime=v1"},
	})
	if err != nil {
		err = fmt.Errorf("failed to open realtime websocket: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return newSession(conn), nil
}
