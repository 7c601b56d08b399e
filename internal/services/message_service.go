package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"txtension/internal/events"
	"txtension/internal/llm/client"
	"txtension/internal/metrics"
	"txtension/internal/models"
	"txtension/internal/prompts"
)

// Dispatcher sends a prompt to a provider.
type Dispatcher interface {
	Dispatch(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error)
}

// APIKeyStore supplies provider keys that are not kept in the settings.
type APIKeyStore interface {
	GetApiKey(provider string) (string, error)
}

// MessageService answers UI messages. Every call returns an envelope; no
// error or panic escapes.
type MessageService interface {
	Handle(ctx context.Context, req models.MessageRequest) models.MessageResponse
}

type messageService struct {
	catalog    CatalogService
	settings   SettingsService
	dispatcher Dispatcher
	keys       APIKeyStore
	metrics    *metrics.Metrics
	pace       func(ctx context.Context) error
}

type MessageOption func(*messageService)

// WithPacing replaces the randomised delay before each provider call.
func WithPacing(pace func(ctx context.Context) error) MessageOption {
	return func(s *messageService) {
		s.pace = pace
	}
}

func WithAPIKeyStore(keys APIKeyStore) MessageOption {
	return func(s *messageService) {
		s.keys = keys
	}
}

func WithMetrics(m *metrics.Metrics) MessageOption {
	return func(s *messageService) {
		s.metrics = m
	}
}

func NewMessageService(catalog CatalogService, settings SettingsService, dispatcher Dispatcher, opts ...MessageOption) MessageService {
	s := &messageService{
		catalog:    catalog,
		settings:   settings,
		dispatcher: dispatcher,
		pace:       randomPacing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// randomPacing waits 120 to 340ms.
func randomPacing(ctx context.Context) error {
	timer := time.NewTimer(time.Duration(120+rand.IntN(220)) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *messageService) Handle(ctx context.Context, req models.MessageRequest) (resp models.MessageResponse) {
	action := req.Name()
	ctx, _ = events.WithRequest(ctx)
	start := time.Now()
	provider := ""
	var handleErr error

	events.Emit(ctx, events.MessageReceived, events.NewInfo("message received").With("action", action))
	defer func() {
		if r := recover(); r != nil {
			log.Printf("services: %s panicked: %v", action, r)
			handleErr = fmt.Errorf("panic: %v", r)
			resp = models.FailureResponse(fallbackMessage(action))
		}
		result := outcome(handleErr)
		s.metrics.ObserveMessage(actionLabel(action), providerLabel(provider), result, time.Since(start))
		switch {
		case resp.Success:
			events.Emit(ctx, events.MessageCompleted, events.NewSuccess("message handled").
				With("action", action, "provider", provider, "elapsed", time.Since(start).Round(time.Millisecond).String()))
		case result == string(client.KindConfiguration):
			events.Emit(ctx, events.MessageCompleted, events.NewWarn(resp.Error).
				With("action", action, "provider", provider, "outcome", result))
		default:
			events.Emit(ctx, events.MessageCompleted, events.NewError(resp.Error).
				With("action", action, "provider", provider, "outcome", result))
		}
	}()

	switch action {
	case models.ActionGetConfig, models.ActionGetTxConfig:
		catalog, err := s.catalog.Catalog()
		if err != nil {
			handleErr = err
			return models.FailureResponse("Config unavailable")
		}
		return models.ConfigResponse(catalog, s.settings.StorageKey())

	case models.ActionTranslateTweet:
		return s.respond(ctx, prompts.KindTranslateTweet, prompts.Payload{
			Source:         req.TweetContent,
			TargetLanguage: req.TargetLanguage,
			ToneID:         req.ToneID,
		}, &provider, &handleErr, models.TranslationResponse)

	case models.ActionTranslateDiscordMessage:
		return s.respond(ctx, prompts.KindTranslateDiscordMessage, prompts.Payload{
			Source:         req.MessageContent,
			TargetLanguage: req.TargetLanguage,
			ToneID:         req.ToneID,
		}, &provider, &handleErr, models.TranslationResponse)

	case models.ActionTranslateReplyDraft:
		return s.respond(ctx, prompts.KindTranslateReplyDraft, prompts.Payload{
			Text:           req.Text,
			TargetLanguage: req.TargetLanguage,
			SourceLanguage: req.SourceLanguage,
			Context:        req.Context,
		}, &provider, &handleErr, models.TranslationResponse)

	case models.ActionGenerateReply:
		return s.respond(ctx, prompts.KindGenerateReply, prompts.Payload{
			Source: req.TweetContent,
		}, &provider, &handleErr, models.ReplyResponse)

	case models.ActionGenerateDiscordReply:
		return s.respond(ctx, prompts.KindGenerateDiscordReply, prompts.Payload{
			Source: req.MessageContent,
		}, &provider, &handleErr, models.ReplyResponse)

	case "":
		handleErr = errors.New("missing action")
		return models.FailureResponse("Missing action.")

	default:
		handleErr = fmt.Errorf("unsupported action %q", action)
		return models.FailureResponse("Unsupported action: " + action)
	}
}

func (s *messageService) respond(
	ctx context.Context,
	kind prompts.Kind,
	payload prompts.Payload,
	provider *string,
	handleErr *error,
	success func(string) models.MessageResponse,
) models.MessageResponse {
	text, id, err := s.generate(ctx, kind, payload)
	*provider = string(id)
	if err != nil {
		*handleErr = err
		message := err.Error()
		if message == "" {
			message = fallbackMessage(string(kind))
		}
		return models.FailureResponse(message)
	}
	return success(text)
}

// generate runs one provider action: settings, prompt, credentials, pacing,
// dispatch and output cleanup.
func (s *messageService) generate(ctx context.Context, kind prompts.Kind, payload prompts.Payload) (string, models.ProviderID, error) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		return "", "", fmt.Errorf("load catalog: %w", err)
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return "", "", err
	}
	providerID := current.Provider

	prompt, err := prompts.Build(kind, payload, current, catalog)
	if err != nil {
		return "", providerID, err
	}

	// Prompt problems are reported before missing credentials.
	providerSettings := current.Active()
	apiKey := strings.TrimSpace(providerSettings.APIKey)
	if apiKey == "" && s.keys != nil && providerID.Valid() {
		key, err := s.keys.GetApiKey(string(providerID))
		if err != nil {
			log.Printf("services: keyring lookup for %s failed: %v", providerID, err)
		}
		apiKey = strings.TrimSpace(key)
	}
	if providerID == "" || apiKey == "" {
		return "", providerID, client.ErrMissingAPIKey
	}
	providerSettings.APIKey = apiKey

	if err := s.pace(ctx); err != nil {
		return "", providerID, fmt.Errorf("request cancelled: %w", err)
	}

	raw, err := s.dispatcher.Dispatch(ctx, providerID, providerSettings, prompt)
	if err != nil {
		return "", providerID, err
	}
	text := SanitizeOutput(raw)
	if text == "" {
		label := string(providerID)
		if entry, ok := catalog.Provider(providerID); ok && entry.Label != "" {
			label = entry.Label
		}
		return "", providerID, fmt.Errorf("%s returned an empty response.", label)
	}
	return text, providerID, nil
}

// SanitizeOutput trims whitespace and wrapping quotes from provider output.
func SanitizeOutput(raw string) string {
	return strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '\''
	})
}

func fallbackMessage(action string) string {
	switch action {
	case models.ActionGenerateReply, models.ActionGenerateDiscordReply:
		return "Reply failed"
	case models.ActionGetConfig, models.ActionGetTxConfig:
		return "Config unavailable"
	default:
		return "Translation failed"
	}
}

// actionLabel and providerLabel keep metric label values to a fixed set.
func actionLabel(action string) string {
	switch {
	case action == "":
		return "missing"
	case models.KnownAction(action):
		return action
	default:
		return "unsupported"
	}
}

func providerLabel(provider string) string {
	if provider == "" || models.ProviderID(provider).Valid() {
		return provider
	}
	return "unknown"
}

func outcome(err error) string {
	var dispatchErr *client.Error
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &dispatchErr):
		return string(dispatchErr.Kind)
	case errors.Is(err, prompts.ErrPromptRequired),
		errors.Is(err, prompts.ErrEmptyDraft),
		errors.Is(err, client.ErrMissingAPIKey):
		return string(client.KindConfiguration)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return string(client.KindTransport)
	default:
		return "error"
	}
}
