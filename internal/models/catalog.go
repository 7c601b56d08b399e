package models

import (
	"encoding/json"
	"fmt"
)

// Catalog is the immutable configuration shipped with the binary. It is
// returned verbatim by the getConfig action.
type Catalog struct {
	Version      string          `json:"version"`
	Branding     Branding        `json:"branding"`
	Theme        BrandTheme      `json:"theme"`
	ButtonStates ButtonStates    `json:"buttonStates"`
	TonePresets  []TonePreset    `json:"tonePresets"`
	Reply        ReplyCopy       `json:"reply"`
	DiscordReply ReplyCopy       `json:"discordReply"`
	PopupThemes  []PopupTheme    `json:"popupThemes"`
	RTLLanguages []string        `json:"rtlLanguages"`
	Languages    []Language      `json:"languages"`
	Providers    []ProviderEntry `json:"providers"`
	Defaults     Settings        `json:"defaultSettings"`
}

type Branding struct {
	ProductName string            `json:"productName"`
	ShortName   string            `json:"shortName"`
	Tagline     string            `json:"tagline"`
	Socials     map[string]string `json:"socials"`
}

type BrandTheme struct {
	FontStack string `json:"fontStack"`
	Accent    string `json:"accent"`
}

type ButtonStates struct {
	Idle    string `json:"idle"`
	Loading string `json:"loading"`
	Success string `json:"success"`
	Error   string `json:"error"`
}

// TonePreset is a named style instruction appended to translation prompts.
type TonePreset struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// ReplyCopy is UI text for the reply feature forms.
type ReplyCopy struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Placeholder        string `json:"placeholder,omitempty"`
	PromptPlaceholder  string `json:"promptPlaceholder,omitempty"`
	ContextPlaceholder string `json:"contextPlaceholder,omitempty"`
}

type PopupTheme struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
	Subtext    string `json:"subtext"`
	Shadow     string `json:"shadow"`
}

type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ProviderEntry describes a provider's display label and fallback model and endpoint.
type ProviderEntry struct {
	ID           ProviderID `json:"id"`
	Label        string     `json:"label"`
	DefaultModel string     `json:"defaultModel"`
	Endpoint     string     `json:"endpoint"`
}

// Provider returns the catalog entry for id.
func (c *Catalog) Provider(id ProviderID) (ProviderEntry, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderEntry{}, false
}

// Tone returns the tone preset for id, falling back to the first preset.
func (c *Catalog) Tone(id string) TonePreset {
	for _, t := range c.TonePresets {
		if t.ID == id {
			return t
		}
	}
	if len(c.TonePresets) > 0 {
		return c.TonePresets[0]
	}
	return TonePreset{}
}

// HasTone reports whether id names a tone preset.
func (c *Catalog) HasTone(id string) bool {
	for _, t := range c.TonePresets {
		if t.ID == id {
			return true
		}
	}
	return false
}

// HasTheme reports whether id names a popup theme.
func (c *Catalog) HasTheme(id string) bool {
	for _, t := range c.PopupThemes {
		if t.ID == id {
			return true
		}
	}
	return false
}

// DefaultTheme is the first theme in the catalog.
func (c *Catalog) DefaultTheme() string {
	if len(c.PopupThemes) == 0 {
		return ""
	}
	return c.PopupThemes[0].ID
}

// LanguageLabel returns the display label for code.
func (c *Catalog) LanguageLabel(code string) (string, bool) {
	for _, l := range c.Languages {
		if l.Code == code {
			return l.Label, true
		}
	}
	return "", false
}

// IsRTL reports whether code is written right to left.
func (c *Catalog) IsRTL(code string) bool {
	for _, l := range c.RTLLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.TonePresets) == 0 {
		return nil, fmt.Errorf("catalog has no tone presets")
	}
	if len(c.PopupThemes) == 0 {
		return nil, fmt.Errorf("catalog has no popup themes")
	}
	for _, p := range c.Providers {
		if !p.ID.Valid() {
			return nil, fmt.Errorf("catalog lists unsupported provider %q", p.ID)
		}
	}
	if c.Defaults.ProviderSettings == nil {
		c.Defaults.ProviderSettings = make(map[ProviderID]ProviderSettings)
	}
	return &c, nil
}
