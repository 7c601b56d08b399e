package models

// ProviderID identifies a text-generation backend.
type ProviderID string

const (
	ProviderOpenAI     ProviderID = "openai"
	ProviderAnthropic  ProviderID = "anthropic"
	ProviderGemini     ProviderID = "gemini"
	ProviderDeepSeek   ProviderID = "deepseek"
	ProviderOpenRouter ProviderID = "openrouter"
	ProviderCustom     ProviderID = "custom"
)

// AllProviders lists every supported provider in catalog order.
var AllProviders = []ProviderID{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGemini,
	ProviderDeepSeek,
	ProviderOpenRouter,
	ProviderCustom,
}

// Valid reports whether p is one of AllProviders.
func (p ProviderID) Valid() bool {
	for _, id := range AllProviders {
		if id == p {
			return true
		}
	}
	return false
}
