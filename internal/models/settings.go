package models

// Settings is the user's persisted configuration after defaults have been
// merged in and repairs applied.
type Settings struct {
	TonePreset       string                          `json:"tonePreset"`
	TargetLanguage   string                          `json:"targetLanguage"`
	PinWindow        bool                            `json:"pinWindow"`
	AutoCopy         bool                            `json:"autoCopy"`
	PopupStyle       PopupStyle                      `json:"popupStyle"`
	Reply            ReplySettings                   `json:"reply"`
	DiscordReply     ReplySettings                   `json:"discordReply"`
	Provider         ProviderID                      `json:"provider"`
	ProviderSettings map[ProviderID]ProviderSettings `json:"providerSettings"`
}

type PopupStyle struct {
	Theme string `json:"theme"`
}

// ReplySettings configures one reply-generation feature. Word bounds of 0
// disable that side of the length directive.
type ReplySettings struct {
	Prompt   string `json:"prompt"`
	Context  string `json:"context"`
	Avoid    string `json:"avoid"`
	MinWords int    `json:"minWords"`
	MaxWords int    `json:"maxWords"`
	AutoCopy bool   `json:"autoCopy"`
}

// ProviderSettings holds credentials and generation parameters for one
// provider. Label and ExtraHeaders are only used by the custom provider;
// MaxOutputTokens only by gemini.
type ProviderSettings struct {
	Label           string  `json:"label,omitempty"`
	APIKey          string  `json:"apiKey"`
	Model           string  `json:"model"`
	BaseURL         string  `json:"baseUrl"`
	ExtraHeaders    string  `json:"extraHeaders,omitempty"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"maxTokens,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Clone returns a copy of s that shares no maps with it.
func (s Settings) Clone() Settings {
	out := s
	out.ProviderSettings = make(map[ProviderID]ProviderSettings, len(s.ProviderSettings))
	for id, ps := range s.ProviderSettings {
		out.ProviderSettings[id] = ps
	}
	return out
}

// Active returns the settings of the selected provider.
func (s Settings) Active() ProviderSettings {
	return s.ProviderSettings[s.Provider]
}
