package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"
)

const customLabel = "Custom provider"

// customOutputPaths are tried in order; the first one present wins.
var customOutputPaths = []string{"choices.0.message.content", "output", "response"}

// customREST posts an OpenAI-style body to the user's endpoint as-is.
func (d *Dispatcher) customREST(ctx context.Context, req request) (string, error) {
	settings := req.Settings
	url := strings.TrimSpace(settings.BaseURL)
	model := strings.TrimSpace(settings.Model)
	if url == "" || model == "" {
		return "", configurationError(req.Provider, ErrCustomEndpoint)
	}
	req.Label = customLabel

	headers := map[string]string{}
	if key := strings.TrimSpace(settings.APIKey); key != "" {
		headers["Authorization"] = "Bearer " + key
	}
	for name, value := range parseExtraHeaders(settings.ExtraHeaders) {
		headers[name] = value
	}

	body, err := d.postJSON(ctx, req, url, headers, chatCompletionsRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	text := customOutput(body)
	if strings.TrimSpace(text) == "" {
		return "", emptyResponseError(req.Provider, req.Label)
	}
	return text, nil
}

// parseExtraHeaders reads the user's JSON header object. Invalid JSON is
// logged and ignored.
func parseExtraHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("client: ignoring invalid custom headers JSON: %v", err)
		return nil
	}
	headers := make(map[string]string, len(parsed))
	for name, value := range parsed {
		switch v := value.(type) {
		case string:
			headers[name] = v
		case nil:
		default:
			headers[name] = fmt.Sprint(v)
		}
	}
	return headers
}

// customOutput normalises the first present output path. Arrays are joined
// with newlines and objects are returned as JSON.
func customOutput(body []byte) string {
	for _, path := range customOutputPaths {
		result := gjson.GetBytes(body, path)
		if !result.Exists() || result.Type == gjson.Null {
			continue
		}
		switch {
		case result.IsArray():
			var lines []string
			for _, item := range result.Array() {
				if item.IsObject() || item.IsArray() {
					lines = append(lines, item.Raw)
				} else {
					lines = append(lines, item.String())
				}
			}
			return strings.Join(lines, "\n")
		case result.IsObject():
			return result.Raw
		default:
			return result.String()
		}
	}
	return ""
}
