package settings

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"txtension/internal/models"
)

// ErrNotObject is returned by Decode when the stored document is not a JSON object.
var ErrNotObject = errors.New("settings: stored value is not a JSON object")

// Stored is a partial settings document as it was persisted. Every field is
// optional; nil means "keep the value underneath".
type Stored struct {
	TonePreset       *string
	TargetLanguage   *string
	PinWindow        *bool
	AutoCopy         *bool
	PopupStyle       *StoredPopupStyle
	Reply            *StoredReply
	DiscordReply     *StoredReply
	Provider         *string
	ProviderSettings map[models.ProviderID]StoredProvider
}

type StoredPopupStyle struct {
	Theme *string
}

type StoredReply struct {
	Prompt   *string
	Context  *string
	Avoid    *string
	MinWords *WordBound
	MaxWords *WordBound
	AutoCopy *bool
	// Enabled is the retired feature toggle. It is read so callers can see
	// it was present; Merge never carries it forward.
	Enabled *bool
}

// WordBound is a stored word count. Valid is false when a value was stored
// but is not a finite number, which disables the bound.
type WordBound struct {
	Value float64
	Valid bool
}

type StoredProvider struct {
	Label           *string
	APIKey          *string
	Model           *string
	BaseURL         *string
	ExtraHeaders    *string
	Temperature     *float64
	MaxTokens       *int
	MaxOutputTokens *int
}

// Decode reads a persisted settings document. Fields with the wrong JSON
// type are treated as absent so one bad value never discards the rest.
// Empty input decodes to an empty Stored.
func Decode(data []byte) (Stored, error) {
	var out Stored
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	fields, ok := objectFields(data)
	if !ok {
		return out, ErrNotObject
	}

	out.TonePreset = stringField(fields, "tonePreset")
	out.TargetLanguage = stringField(fields, "targetLanguage")
	out.PinWindow = boolField(fields, "pinWindow")
	out.AutoCopy = boolField(fields, "autoCopy")
	out.Provider = stringField(fields, "provider")

	if style, ok := objectFields(fields["popupStyle"]); ok {
		out.PopupStyle = &StoredPopupStyle{Theme: stringField(style, "theme")}
	}
	if reply, ok := objectFields(fields["reply"]); ok {
		out.Reply = decodeReply(reply)
	}
	if reply, ok := objectFields(fields["discordReply"]); ok {
		out.DiscordReply = decodeReply(reply)
	}
	if providers, ok := objectFields(fields["providerSettings"]); ok {
		out.ProviderSettings = make(map[models.ProviderID]StoredProvider, len(providers))
		for id, raw := range providers {
			entry, ok := objectFields(raw)
			if !ok {
				continue
			}
			out.ProviderSettings[models.ProviderID(id)] = decodeProvider(entry)
		}
	}
	return out, nil
}

func decodeReply(fields map[string]json.RawMessage) *StoredReply {
	return &StoredReply{
		Prompt:   stringField(fields, "prompt"),
		Context:  stringField(fields, "context"),
		Avoid:    stringField(fields, "avoid"),
		MinWords: wordField(fields, "minWords"),
		MaxWords: wordField(fields, "maxWords"),
		AutoCopy: boolField(fields, "autoCopy"),
		Enabled:  boolField(fields, "enabled"),
	}
}

func decodeProvider(fields map[string]json.RawMessage) StoredProvider {
	p := StoredProvider{
		Label:        stringField(fields, "label"),
		APIKey:       stringField(fields, "apiKey"),
		Model:        stringField(fields, "model"),
		BaseURL:      stringField(fields, "baseUrl"),
		ExtraHeaders: stringField(fields, "extraHeaders"),
	}
	if v, ok := numberField(fields, "temperature"); ok {
		p.Temperature = &v
	}
	p.MaxTokens = tokenField(fields, "maxTokens")
	p.MaxOutputTokens = tokenField(fields, "maxOutputTokens")
	return p
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || string(raw) == "null" {
		return nil
	}
	return &s
}

func boolField(fields map[string]json.RawMessage, key string) *bool {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil || string(raw) == "null" {
		return nil
	}
	return &b
}

// numberField accepts JSON numbers and numeric strings. The second result is
// false when the key is missing or the value is not a finite number.
func numberField(fields map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || string(raw) == "null" {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func wordField(fields map[string]json.RawMessage, key string) *WordBound {
	if _, ok := fields[key]; !ok {
		return nil
	}
	v, ok := numberField(fields, key)
	return &WordBound{Value: v, Valid: ok}
}

func tokenField(fields map[string]json.RawMessage, key string) *int {
	v, ok := numberField(fields, key)
	if !ok || v < 1 {
		return nil
	}
	n := int(math.Floor(math.Min(v, MaxTokenLimit)))
	return &n
}
