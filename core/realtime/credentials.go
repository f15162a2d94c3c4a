package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrCredentialMissing = errors.New("realtime credential missing")

// Credential is a short lived client secret for one realtime session.
type Credential struct {
	Value     string
	ExpiresAt time.Time
	Model     string
}

type sessionDescriptor struct {
	Model        string `json:"model"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

func (d sessionDescriptor) credential() (Credential, error) {
	if strings.TrimSpace(d.ClientSecret.Value) == "" {
		return Credential{}, ErrCredentialMissing
	}
	c := Credential{Value: d.ClientSecret.Value, Model: d.Model}
	if d.ClientSecret.ExpiresAt > 0 {
		c.ExpiresAt = time.Unix(d.ClientSecret.ExpiresAt, 0)
	}
	return c, nil
}

// fetchCredential asks the bootstrap endpoint for a session descriptor.
func (d *Dialer) fetchCredential(ctx context.Context) (Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.sessionURL, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("error creating session request: %w", err)
	}
	return d.doCredentialRequest(req)
}

// mintCredential creates an ephemeral session secret with the API key.
func (d *Dialer) mintCredential(ctx context.Context) (Credential, error) {
	if d.apiKey == "" {
		return Credential{}, ErrCredentialMissing
	}

	body, err := json.Marshal(map[string]any{
		"model": d.model,
		"voice": d.voice,
	})
	if err != nil {
		return Credential{}, fmt.Errorf("error marshalling session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(d.apiBaseURL, "/")+"/v1/realtime/sessions", bytes.NewReader(body))
	if err != nil {
		return Credential{}, fmt.Errorf("error creating session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("OpenAI-Beta", "realtime=v1")
	return d.doCredentialRequest(req)
}

func (d *Dialer) doCredentialRequest(req *http.Request) (Credential, error) {
	ctx, span := tracer.Start(req.Context(), "acquire realtime credential")
	defer span.End()
	span.SetAttributes(attribute.String("request.url", req.URL.String()))

	resp, err := d.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		err = fmt.Errorf("error sending session request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Credential{}, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		span.SetAttributes(attribute.String("response.error", string(errorBody)))
		err := fmt.Errorf("non-OK HTTP status: %s: %w", resp.Status, ErrCredentialMissing)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Credential{}, err
	}

	var descriptor sessionDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptor); err != nil {
		err = fmt.Errorf("error decoding session descriptor: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Credential{}, err
	}

	credential, err := descriptor.credential()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Credential{}, err
	}
	return credential, nil
}
