package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	goopenai "github.com/meguminnnnnnnnn/go-openai"
)

// chatCompletions serves the OpenAI-compatible providers: openai, deepseek
// and openrouter.
func (d *Dispatcher) chatCompletions(ctx context.Context, req request) (string, error) {
	temperature := float32(req.Temperature)
	maxTokens := req.MaxTokens

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      strings.TrimSpace(req.Settings.APIKey),
		BaseURL:     req.BaseURL,
		Model:       req.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		HTTPClient:  d.httpClient,
		Timeout:     d.timeout,
	})
	if err != nil {
		return "", configurationError(req.Provider, fmt.Errorf("%s client setup failed: %w", req.Label, err))
	}

	msg, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(req.Prompt)})
	if err != nil {
		return "", chatModelError(req, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", emptyResponseError(req.Provider, req.Label)
	}
	return msg.Content, nil
}

// chatModelError classifies a Generate failure. API errors carry the body's
// error.message; other non-2xx replies keep the raw body.
func chatModelError(req request, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = fmt.Sprintf("HTTP %d", apiErr.HTTPStatusCode)
		}
		return providerError(req.Provider, apiErr.HTTPStatusCode, message)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return providerError(req.Provider, reqErr.HTTPStatusCode, errorMessage(reqErr.Body, reqErr.HTTPStatusCode))
	}

	var urlErr *url.Error
	var netErr net.Error
	if isTimeout(err) || errors.Is(err, context.Canceled) || errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return transportError(req.Provider, req.Label, err)
	}

	// A 2xx reply without choices.
	empty := emptyResponseError(req.Provider, req.Label)
	empty.Err = errors.Join(ErrEmptyResponse, err)
	return empty
}
