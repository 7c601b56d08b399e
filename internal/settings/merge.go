package settings

import (
	"math"

	"txtension/internal/models"
)

const (
	MinWordLimit = 0
	MaxWordLimit = 250

	// MaxTokenLimit caps stored token counts so they fit every provider's
	// int32 fields.
	MaxTokenLimit = math.MaxInt32
)

// Merge overlays stored on base. Values present in stored win; absent values
// keep base. Provider settings merge per provider id. base is not modified.
func Merge(base models.Settings, stored Stored) models.Settings {
	out := base.Clone()

	setString(&out.TonePreset, stored.TonePreset)
	setString(&out.TargetLanguage, stored.TargetLanguage)
	setBool(&out.PinWindow, stored.PinWindow)
	setBool(&out.AutoCopy, stored.AutoCopy)
	if stored.Provider != nil {
		out.Provider = models.ProviderID(*stored.Provider)
	}
	if stored.PopupStyle != nil {
		setString(&out.PopupStyle.Theme, stored.PopupStyle.Theme)
	}
	mergeReply(&out.Reply, stored.Reply)
	mergeReply(&out.DiscordReply, stored.DiscordReply)

	for id, sp := range stored.ProviderSettings {
		ps := out.ProviderSettings[id]
		setString(&ps.Label, sp.Label)
		setString(&ps.APIKey, sp.APIKey)
		setString(&ps.Model, sp.Model)
		setString(&ps.BaseURL, sp.BaseURL)
		setString(&ps.ExtraHeaders, sp.ExtraHeaders)
		if sp.Temperature != nil {
			ps.Temperature = *sp.Temperature
		}
		if sp.MaxTokens != nil {
			ps.MaxTokens = *sp.MaxTokens
		}
		if sp.MaxOutputTokens != nil {
			ps.MaxOutputTokens = *sp.MaxOutputTokens
		}
		out.ProviderSettings[id] = ps
	}
	return out
}

func mergeReply(dst *models.ReplySettings, src *StoredReply) {
	if src == nil {
		return
	}
	setString(&dst.Prompt, src.Prompt)
	setString(&dst.Context, src.Context)
	setString(&dst.Avoid, src.Avoid)
	setBool(&dst.AutoCopy, src.AutoCopy)
	if src.MinWords != nil {
		dst.MinWords = src.MinWords.words()
	}
	if src.MaxWords != nil {
		dst.MaxWords = src.MaxWords.words()
	}
}

func (w WordBound) words() int {
	if !w.Valid {
		return 0
	}
	return NormalizeWordCount(w.Value)
}

// NormalizeWordCount maps a raw word count onto [0, 250]. Non-positive values
// disable the bound; positive fractions round up to 1, everything else floors.
func NormalizeWordCount(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return MinWordLimit
	case v >= MaxWordLimit:
		return MaxWordLimit
	case v < 1:
		return 1
	default:
		return int(math.Floor(v))
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
