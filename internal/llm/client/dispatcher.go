package client

import (
	"context"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"txtension/internal/models"
)

const (
	// DefaultTimeout bounds every provider call.
	DefaultTimeout     = 32 * time.Second
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 400
)

// request is the normalised input handed to a provider adapter.
type request struct {
	Provider    models.ProviderID
	Label       string
	Settings    models.ProviderSettings
	Prompt      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

type adapter func(ctx context.Context, req request) (string, error)

// Dispatcher sends a prompt to the configured provider and returns the
// generated text.
type Dispatcher struct {
	catalog    *models.Catalog
	timeout    time.Duration
	httpClient *http.Client
	rest       *resty.Client
	adapters   map[models.ProviderID]adapter
}

type Option func(*Dispatcher)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithHTTPClient sets the underlying HTTP client for every adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = client
	}
}

func NewDispatcher(catalog *models.Catalog, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog: catalog,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.httpClient != nil {
		d.rest = resty.NewWithClient(d.httpClient)
	} else {
		d.rest = resty.New()
	}
	d.rest.SetTimeout(d.timeout)

	d.adapters = map[models.ProviderID]adapter{
		models.ProviderOpenAI:     d.chatCompletions,
		models.ProviderAnthropic:  d.anthropicMessages,
		models.ProviderGemini:     d.geminiGenerate,
		models.ProviderDeepSeek:   d.chatCompletions,
		models.ProviderOpenRouter: d.chatCompletions,
		models.ProviderCustom:     d.customREST,
	}
	return d
}

// Supports reports whether an adapter is registered for id.
func (d *Dispatcher) Supports(id models.ProviderID) bool {
	_, ok := d.adapters[id]
	return ok
}

// Dispatch sends prompt to provider id using settings. Every failure is an
// *Error; a successful result is never empty.
func (d *Dispatcher) Dispatch(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
	call, ok := d.adapters[id]
	if !ok {
		return "", configurationError(id, ErrUnsupportedProvider)
	}

	entry, _ := d.catalog.Provider(id)
	req := request{
		Provider:    id,
		Label:       entry.Label,
		Settings:    settings,
		Prompt:      prompt,
		BaseURL:     strings.TrimSuffix(firstNonEmpty(strings.TrimSpace(settings.BaseURL), entry.Endpoint), "/"),
		Model:       firstNonEmpty(strings.TrimSpace(settings.Model), entry.DefaultModel),
		Temperature: sanitizeTemperature(settings.Temperature),
		MaxTokens:   settings.MaxTokens,
	}
	if req.Label == "" {
		req.Label = string(id)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if id != models.ProviderCustom && strings.TrimSpace(settings.APIKey) == "" {
		return "", configurationError(id, ErrMissingAPIKey)
	}

	start := time.Now()
	text, err := call(ctx, req)
	if err != nil {
		log.Printf("client: %s dispatch failed after %s: %v", id, time.Since(start).Round(time.Millisecond), err)
		return "", err
	}
	return text, nil
}

func sanitizeTemperature(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultTemperature
	}
	return math.Min(math.Max(v, 0), 1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
