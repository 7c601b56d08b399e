package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiAPIVersion = "v1beta"

var apiVersionSegment = regexp.MustCompile(`^v\d+((alpha|beta)\d*)?$`)

func (d *Dispatcher) geminiGenerate(ctx context.Context, req request) (text string, err error) {
	baseURL, apiVersion := splitAPIVersion(req.BaseURL)
	timeout := d.timeout

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     strings.TrimSpace(req.Settings.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: d.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: apiVersion,
			Timeout:    &timeout,
		},
	})
	if err != nil {
		return "", configurationError(req.Provider, fmt.Errorf("%s client setup failed: %w", req.Label, err))
	}

	maxTokens := req.Settings.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = req.MaxTokens
	}

	// The SDK dereferences a missing "error" object on some non-2xx bodies.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = providerError(req.Provider, 0, fmt.Sprintf("%s returned an unreadable error response.", req.Label))
		}
	}()

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			message := strings.TrimSpace(apiErr.Message)
			if message == "" {
				message = fmt.Sprintf("HTTP %d", apiErr.Code)
			}
			return "", providerError(req.Provider, apiErr.Code, message)
		}
		return "", transportError(req.Provider, req.Label, err)
	}

	text = resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", emptyResponseError(req.Provider, req.Label)
	}
	return text, nil
}

// splitAPIVersion turns ".../v1beta" into the SDK's base URL and API version.
func splitAPIVersion(endpoint string) (string, string) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, defaultGeminiAPIVersion
	}
	path := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(path, "/")
	last := path[idx+1:]
	if !apiVersionSegment.MatchString(last) {
		return endpoint + "/", defaultGeminiAPIVersion
	}
	u.Path = path[:idx+1]
	return u.String(), last
}
