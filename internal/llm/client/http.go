package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// postJSON sends body to url and returns the raw response body of a 2xx
// reply. Non-2xx replies become provider errors carrying the message found
// in the body.
func (d *Dispatcher) postJSON(ctx context.Context, req request, url string, headers map[string]string, body any) ([]byte, error) {
	resp, err := d.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, transportError(req.Provider, req.Label, err)
	}
	if !resp.IsSuccess() {
		return nil, providerError(req.Provider, resp.StatusCode(), errorMessage(resp.Body(), resp.StatusCode()))
	}
	return resp.Body(), nil
}

// errorMessage picks error.message, then message, from a JSON error body.
// Bodies that are not JSON are returned as text.
func errorMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("HTTP %d", status)
	if !gjson.ValidBytes(body) {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
		return fallback
	}
	for _, path := range []string{"error.message", "message"} {
		if msg := gjson.GetBytes(body, path); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	return fallback
}

// extractText returns the string at path, or "" when it is missing.
func extractText(body []byte, path string) string {
	return gjson.GetBytes(body, path).String()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionsRequest is the OpenAI-style body the custom provider accepts.
type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}
