package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txtension/internal/events"
	"txtension/internal/llm/client"
	"txtension/internal/metrics"
	"txtension/internal/models"
	"txtension/internal/services"
	"txtension/internal/tests/mocks"
)

func noPacing(context.Context) error { return nil }

func newRouter(t *testing.T, stored string, dispatcher *mocks.DispatcherMock, opts ...services.MessageOption) services.MessageService {
	t.Helper()
	repo := &mocks.SettingsRepositoryMock{}
	if stored != "" {
		seed(t, repo, stored)
	}
	settings := newSettingsService(repo)
	opts = append([]services.MessageOption{
		services.WithPacing(noPacing),
		services.WithMetrics(metrics.MustNew(prometheus.NewRegistry())),
	}, opts...)
	return services.NewMessageService(services.NewCatalogService(), settings, dispatcher, opts...)
}

const openAIConfigured = `{"provider": "openai", "providerSettings": {"openai": {"apiKey": "sk-test"}}}`

func TestMessageService_GetConfig(t *testing.T) {
	router := newRouter(t, "", &mocks.DispatcherMock{})

	for _, action := range []string{"getConfig", "getTxConfig"} {
		resp := router.Handle(context.Background(), models.MessageRequest{Action: action})

		assert.True(t, resp.Success)
		require.NotNil(t, resp.Config)
		assert.Equal(t, "TXtension", resp.Config.Branding.ProductName)
		assert.Equal(t, "txSettings", resp.SettingsKey)
	}
}

func TestMessageService_TypeAliasesAction(t *testing.T) {
	router := newRouter(t, "", &mocks.DispatcherMock{})

	resp := router.Handle(context.Background(), models.MessageRequest{Type: "getConfig"})

	assert.True(t, resp.Success)
}

func TestMessageService_UnknownAction(t *testing.T) {
	router := newRouter(t, "", &mocks.DispatcherMock{})

	resp := router.Handle(context.Background(), models.MessageRequest{Action: "summarise"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Unsupported action: summarise", resp.Error)

	resp = router.Handle(context.Background(), models.MessageRequest{})
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing action.", resp.Error)
}

func TestMessageService_TranslateTweet(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{
		DispatchFunc: func(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
			return "  \"Hallo Welt\"\n", nil
		},
	}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:         "translateTweet",
		TweetContent:   &models.SourceContent{Text: "hello world", Author: "@a"},
		TargetLanguage: "de",
	})

	assert.True(t, resp.Success, resp.Error)
	assert.Equal(t, "Hallo Welt", resp.Translation)
	require.Equal(t, 1, dispatcher.CallCount())
	call := dispatcher.Calls[0]
	assert.Equal(t, models.ProviderOpenAI, call.Provider)
	assert.Equal(t, "sk-test", call.Settings.APIKey)
	assert.Contains(t, call.Prompt, "always responds in German.")
	assert.Contains(t, call.Prompt, "\"\"\"hello world\"\"\"")
}

func TestMessageService_UnknownLanguageCodeIsUpperCased(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:         "translateTweet",
		TweetContent:   &models.SourceContent{Text: "hi"},
		TargetLanguage: "xx",
	})

	require.True(t, resp.Success, resp.Error)
	require.Equal(t, 1, dispatcher.CallCount())
	assert.Contains(t, dispatcher.Calls[0].Prompt, "XX")
}

func TestMessageService_GenerateReplyWithoutPromptNeverDispatches(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "generateReply",
		TweetContent: &models.SourceContent{Text: "gm"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "Please first specify the prompt in the settings.", resp.Error)
	assert.Equal(t, 0, dispatcher.CallCount())
}

func TestMessageService_GenerateReply(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{
		DispatchFunc: func(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
			return "'gm to you too'", nil
		},
	}
	router := newRouter(t, `{"provider": "openai", "providerSettings": {"openai": {"apiKey": "k"}}, "reply": {"prompt": "Be upbeat."}}`, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "generateReply",
		TweetContent: &models.SourceContent{Text: "gm", Author: "@z"},
	})

	assert.True(t, resp.Success, resp.Error)
	assert.Equal(t, "gm to you too", resp.Reply)
	assert.Empty(t, resp.Translation)
	assert.Contains(t, dispatcher.Calls[0].Prompt, "Be upbeat.")
	assert.Contains(t, dispatcher.Calls[0].Prompt, "between 3 and 20 words")
}

func TestMessageService_GenerateDiscordReply(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, `{"provider": "deepseek", "providerSettings": {"deepseek": {"apiKey": "k"}}, "discordReply": {"prompt": "Be brief.", "maxWords": 0, "minWords": 0}}`, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:         "generateDiscordReply",
		MessageContent: &models.SourceContent{Text: "anyone around?"},
	})

	assert.True(t, resp.Success, resp.Error)
	assert.Equal(t, "ok", resp.Reply)
	assert.Equal(t, models.ProviderDeepSeek, dispatcher.Calls[0].Provider)
	assert.NotContains(t, dispatcher.Calls[0].Prompt, "Make the reply fall")
}

func TestMessageService_TranslateReplyDraftEmpty(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{Action: "translateReplyDraft", Text: "  "})

	assert.False(t, resp.Success)
	assert.Equal(t, "Write a reply first.", resp.Error)
	assert.Equal(t, 0, dispatcher.CallCount())
}

func TestMessageService_TranslateDiscordMessageAndDraft(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:         "translateDiscordMessage",
		MessageContent: &models.SourceContent{Text: "salut"},
	})
	assert.True(t, resp.Success, resp.Error)
	assert.Equal(t, "ok", resp.Translation)

	resp = router.Handle(context.Background(), models.MessageRequest{
		Action:         "translateReplyDraft",
		Text:           "thanks a lot",
		TargetLanguage: "es",
		Context:        "discord",
	})
	assert.True(t, resp.Success, resp.Error)
	assert.Contains(t, dispatcher.Calls[1].Prompt, "into Spanish (es)")
}

func TestMessageService_MissingCredentials(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, `{"provider": "openai"}`, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "translateTweet",
		TweetContent: &models.SourceContent{Text: "hi"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "No provider credentials configured.", resp.Error)
	assert.Equal(t, 0, dispatcher.CallCount())
}

func TestMessageService_KeyringFallback(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	keys := &mocks.APIKeyStoreMock{
		GetApiKeyFunc: func(provider string) (string, error) {
			if provider == "anthropic" {
				return " ak-from-keyring ", nil
			}
			return "", nil
		},
	}
	router := newRouter(t, `{"provider": "anthropic"}`, dispatcher, services.WithAPIKeyStore(keys))

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "translateTweet",
		TweetContent: &models.SourceContent{Text: "hi"},
	})

	assert.True(t, resp.Success, resp.Error)
	assert.Equal(t, "ak-from-keyring", dispatcher.Calls[0].Settings.APIKey)
}

func TestMessageService_KeyringErrorStillReportsMissingCredentials(t *testing.T) {
	keys := &mocks.APIKeyStoreMock{
		GetApiKeyFunc: func(provider string) (string, error) {
			return "", errors.New("keyring locked")
		},
	}
	router := newRouter(t, `{"provider": "openai"}`, &mocks.DispatcherMock{}, services.WithAPIKeyStore(keys))

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "translateTweet",
		TweetContent: &models.SourceContent{Text: "hi"},
	})

	assert.Equal(t, "No provider credentials configured.", resp.Error)
}

func TestMessageService_DispatchErrorsBecomeEnvelopes(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{
		DispatchFunc: func(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
			return "", &client.Error{Kind: client.KindProvider, Provider: id, Status: 401, Message: "Invalid API key"}
		},
	}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "translateTweet",
		TweetContent: &models.SourceContent{Text: "hi"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid API key", resp.Error)
}

func TestMessageService_OutputOfOnlyQuotesIsEmptyResponse(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{
		DispatchFunc: func(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
			return `" '' "`, nil
		},
	}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "translateTweet",
		TweetContent: &models.SourceContent{Text: "hi"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "OpenAI returned an empty response.", resp.Error)
}

func TestMessageService_PanicsBecomeFailures(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{
		DispatchFunc: func(ctx context.Context, id models.ProviderID, settings models.ProviderSettings, prompt string) (string, error) {
			panic("boom")
		},
	}
	router := newRouter(t, openAIConfigured, dispatcher)

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:         "translateDiscordMessage",
		MessageContent: &models.SourceContent{Text: "hi"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "Translation failed", resp.Error)
}

func TestMessageService_PacingCancellation(t *testing.T) {
	dispatcher := &mocks.DispatcherMock{}
	router := newRouter(t, openAIConfigured, dispatcher, services.WithPacing(func(ctx context.Context) error {
		return context.Canceled
	}))

	resp := router.Handle(context.Background(), models.MessageRequest{
		Action:       "translateTweet",
		TweetContent: &models.SourceContent{Text: "hi"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, 0, dispatcher.CallCount())
}

func TestSanitizeOutput(t *testing.T) {
	assert.Equal(t, "hello", services.SanitizeOutput(`  "hello"  `))
	assert.Equal(t, "it's fine", services.SanitizeOutput(`'it's fine'`))
	assert.Equal(t, `say "hi" now`, services.SanitizeOutput("\n\"say \"hi\" now\"\n"))
	assert.Equal(t, "", services.SanitizeOutput(` "' `))
}

func TestMessageService_UnknownActionsShareOneMetricSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newRouter(t, "", &mocks.DispatcherMock{}, services.WithMetrics(metrics.MustNew(reg)))

	for _, action := range []string{"summarise", "summarize", "x-1", "x-2"} {
		resp := router.Handle(context.Background(), models.MessageRequest{Action: action})
		require.False(t, resp.Success)
	}
	router.Handle(context.Background(), models.MessageRequest{Action: "getConfig"})

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "txtension_router_messages_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "txtension_router_message_duration_seconds"))
	assert.Equal(t, map[string]float64{"unsupported": 4, "getConfig": 1}, messageCounts(t, reg))
}

func TestMessageService_ConfigurationFailuresEmitWarnings(t *testing.T) {
	var completed []events.RequestEvent
	events.SetCustomEmitter(func(_ context.Context, name string, evt events.RequestEvent) {
		if name == events.MessageCompleted {
			completed = append(completed, evt)
		}
	})
	defer events.SetCustomEmitter(nil)

	dispatcher := &mocks.DispatcherMock{
		DispatchFunc: func(context.Context, models.ProviderID, models.ProviderSettings, string) (string, error) {
			return "", &client.Error{Kind: client.KindProvider, Provider: models.ProviderOpenAI, Message: "rate limited"}
		},
	}
	unconfigured := newRouter(t, `{"provider": "openai"}`, dispatcher)
	configured := newRouter(t, openAIConfigured, dispatcher)
	tweet := models.MessageRequest{Action: "translateTweet", TweetContent: &models.SourceContent{Text: "hi"}}

	unconfigured.Handle(context.Background(), tweet)
	configured.Handle(context.Background(), tweet)

	require.Len(t, completed, 2)
	assert.Equal(t, events.EventWarn, completed[0].Type)
	assert.Equal(t, "configuration", completed[0].Metadata["outcome"])
	assert.Equal(t, events.EventError, completed[1].Type)
	assert.Equal(t, "provider", completed[1].Metadata["outcome"])
}

// messageCounts sums messages_total gathered from reg by action label.
func messageCounts(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "txtension_router_messages_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "action" {
					counts[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return counts
}
