package settings

import (
	"log"

	"txtension/internal/models"
)

// Repair enforces the settings constraints in place: every catalog provider
// has an entry, word bounds sit in [0, 250] with min <= max, temperatures
// sit in [0, 1] and the popup theme names a catalog theme.
func Repair(s *models.Settings, catalog *models.Catalog) {
	if s.ProviderSettings == nil {
		s.ProviderSettings = make(map[models.ProviderID]models.ProviderSettings)
	}
	for _, p := range catalog.Providers {
		if _, ok := s.ProviderSettings[p.ID]; !ok {
			s.ProviderSettings[p.ID] = catalog.Defaults.ProviderSettings[p.ID]
		}
	}
	for id, ps := range s.ProviderSettings {
		ps.Temperature = clampFloat(ps.Temperature, 0, 1)
		s.ProviderSettings[id] = ps
	}

	enforceWordBounds(&s.Reply)
	enforceWordBounds(&s.DiscordReply)

	if !catalog.HasTheme(s.PopupStyle.Theme) {
		s.PopupStyle.Theme = catalog.DefaultTheme()
	}
}

// Reconcile decodes a persisted document and merges it over the catalog
// defaults. A document that cannot be decoded yields the defaults together
// with the decode error.
func Reconcile(catalog *models.Catalog, data []byte) (models.Settings, error) {
	stored, err := Decode(data)
	merged := Merge(catalog.Defaults, stored)
	if stored.DiscordReply != nil && stored.DiscordReply.Enabled != nil {
		log.Printf("settings: dropping legacy discordReply.enabled flag")
	}
	Repair(&merged, catalog)
	return merged, err
}

// Apply merges a partial update over current and repairs the result.
func Apply(catalog *models.Catalog, current models.Settings, patch Stored) models.Settings {
	merged := Merge(current, patch)
	Repair(&merged, catalog)
	return merged
}

func enforceWordBounds(r *models.ReplySettings) {
	r.MinWords = clampInt(r.MinWords, MinWordLimit, MaxWordLimit)
	r.MaxWords = clampInt(r.MaxWords, MinWordLimit, MaxWordLimit)
	// 0 disables a bound, so only a pair of set bounds can be inverted.
	if r.MinWords > 0 && r.MaxWords > 0 && r.MinWords > r.MaxWords {
		r.MinWords, r.MaxWords = r.MaxWords, r.MinWords
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
