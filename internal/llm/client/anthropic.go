package client

import (
	"context"
	"strings"
)

const (
	anthropicVersion = "2023-06-01"
	anthropicSystem  = "You are TXtension, a precise translation assistant."
)

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
}

func (d *Dispatcher) anthropicMessages(ctx context.Context, req request) (string, error) {
	body, err := d.postJSON(ctx, req, req.BaseURL+"/messages",
		map[string]string{
			"x-api-key":         strings.TrimSpace(req.Settings.APIKey),
			"anthropic-version": anthropicVersion,
		},
		anthropicRequest{
			Model:       req.Model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			System:      anthropicSystem,
			Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		})
	if err != nil {
		return "", err
	}

	text := extractText(body, "content.0.text")
	if strings.TrimSpace(text) == "" {
		return "", emptyResponseError(req.Provider, req.Label)
	}
	return text, nil
}
