package openai

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/invopop/jsonschema"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultModel = "gpt-4o-mini"

var ErrEmptyCompletion = errors.New("completion has no choices")

type chatCompletions interface {
	New(ctx context.Context, params openaisdk.ChatCompletionNewParams, opts ...option.RequestOption) (*openaisdk.ChatCompletion, error)
}

// Client implements enrichment.Gateway with chat completions.
type Client struct {
	completions chatCompletions
	model       string

	baseURL    string
	httpClient *http.Client
	maxRetries *int
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI compatible endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMaxRetries(retries int) ClientOption {
	return func(c *Client) {
		c.maxRetries = &retries
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		model:      DefaultModel,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(c.httpClient),
	}
	if c.baseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(c.baseURL))
	}
	if c.maxRetries != nil {
		requestOptions = append(requestOptions, option.WithMaxRetries(*c.maxRetries))
	}

	client := openaisdk.NewClient(requestOptions...)
	c.completions = &client.Chat.Completions
	return c
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, format responseFormat) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(userPrompt),
		},
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   format.name,
					Schema: format.schema,
				},
			},
		},
	}

	completion, err := c.completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}

type responseFormat struct {
	name   string
	schema *jsonschema.Schema
}

func reflectFormat(v any) responseFormat {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return responseFormat{
		name:   reflect.TypeOf(v).Name(),
		schema: reflector.Reflect(v),
	}
}
