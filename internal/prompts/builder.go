package prompts

import (
	"errors"
	"fmt"
	"strings"

	"txtension/internal/models"
)

// Kind selects the prompt template.
type Kind string

const (
	KindTranslateTweet          Kind = "translateTweet"
	KindTranslateDiscordMessage Kind = "translateDiscordMessage"
	KindTranslateReplyDraft     Kind = "translateReplyDraft"
	KindGenerateReply           Kind = "generateReply"
	KindGenerateDiscordReply    Kind = "generateDiscordReply"
)

// These messages are shown to the user as-is.
var (
	ErrPromptRequired = errors.New("Please first specify the prompt in the settings.")
	ErrEmptyDraft     = errors.New("Write a reply first.")
)

const defaultProductName = "TXtension"

// Payload carries the request-specific inputs of a prompt. Source is the
// scraped tweet or message; Text is a reply draft.
type Payload struct {
	Source         *models.SourceContent
	Text           string
	TargetLanguage string
	SourceLanguage string
	ToneID         string
	Context        string
}

// Build renders the prompt for kind. Fragments are emitted in a fixed order:
// role, language, tone, custom instructions, constraints, source metadata,
// content and output format. Empty fragments are dropped.
func Build(kind Kind, payload Payload, settings models.Settings, catalog *models.Catalog) (string, error) {
	source := models.SourceContent{}
	if payload.Source != nil {
		source = *payload.Source
	}

	var p prompt
	switch kind {
	case KindTranslateTweet:
		translateTweet(&p, source, payload, settings, catalog)
	case KindTranslateDiscordMessage:
		translateDiscordMessage(&p, source, payload, settings, catalog)
	case KindTranslateReplyDraft:
		if err := translateReplyDraft(&p, payload, settings, catalog); err != nil {
			return "", err
		}
	case KindGenerateReply:
		if err := generateReply(&p, source, settings.Reply); err != nil {
			return "", err
		}
	case KindGenerateDiscordReply:
		if err := generateDiscordReply(&p, source, settings.DiscordReply); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown prompt kind %q", kind)
	}
	return p.String(), nil
}

func translateTweet(p *prompt, source models.SourceContent, payload Payload, settings models.Settings, catalog *models.Catalog) {
	code := firstNonEmpty(payload.TargetLanguage, settings.TargetLanguage)
	label := ResolveLanguage(catalog, code, "the selected language")
	tone := catalog.Tone(firstNonEmpty(payload.ToneID, settings.TonePreset))

	p.role = []string{fmt.Sprintf("You are %s, an expert translator who always responds in %s.", productName(catalog), label)}
	p.language = languageRules(catalog, code, label)
	p.tone = []string{
		"Use a smooth, conversational voice even for technical subjects. Keep explanations clear and natural, never stiff or academic.",
		tone.Prompt,
		fmt.Sprintf("If the tweet already uses %s, rewrite it to match the requested style instead of apologising.", label),
	}
	p.metadata = []string{
		prefixed("Detected source language: ", source.Language),
		prefixed("Tweet author: ", source.Author),
	}
	p.content = contentBlock("Tweet content:", source.Text)
	p.output = []string{"Return only the final text with no labels, headings, notes, or commentary. Do not mention that you are translating or summarising."}
}

func translateDiscordMessage(p *prompt, source models.SourceContent, payload Payload, settings models.Settings, catalog *models.Catalog) {
	code := firstNonEmpty(payload.TargetLanguage, settings.TargetLanguage)
	label := ResolveLanguage(catalog, code, "the selected language")
	tone := catalog.Tone(firstNonEmpty(payload.ToneID, settings.TonePreset))

	p.role = []string{fmt.Sprintf("You are %s, an expert translator drafting responses for Discord conversations. Always answer in %s.", productName(catalog), label)}
	p.language = languageRules(catalog, code, label)
	p.tone = []string{
		"Use a smooth, conversational voice that feels natural in real chat threads, even for technical subjects. Keep terminology accurate but explain tricky ideas plainly.",
		tone.Prompt,
	}
	p.metadata = []string{
		prefixed("Detected source language: ", source.Language),
		prefixed("Message author: ", source.Author),
	}
	p.content = contentBlock("Message content:", source.Text)
	p.output = []string{"Return only the translated message. Do not add headings, notes, emojis, markdown fences, or commentary."}
}

func translateReplyDraft(p *prompt, payload Payload, settings models.Settings, catalog *models.Catalog) error {
	draft := strings.TrimSpace(payload.Text)
	if draft == "" {
		return ErrEmptyDraft
	}

	code := strings.ToLower(strings.TrimSpace(payload.TargetLanguage))
	if code == "" {
		code = firstNonEmpty(settings.TargetLanguage, "en")
	}
	label := ResolveLanguage(catalog, code, "the requested language")
	platform := "Twitter"
	if payload.Context == "discord" {
		platform = "Discord"
	}

	p.role = []string{fmt.Sprintf("You are %s, a conversational translator preparing %s replies.", productName(catalog), platform)}
	p.language = []string{fmt.Sprintf("Translate the draft below into %s (%s).", label, code)}
	p.tone = []string{"Keep the voice casual, fluid, and natural. Avoid stiff, formal, or academic phrasing."}
	p.constraints = []string{
		"Do not add ideas, emojis, hashtags, or commentary that do not exist in the draft.",
		"Avoid using hyphens, underscores, or decorative separators between words.",
	}
	if hint := strings.TrimSpace(payload.SourceLanguage); hint != "" {
		p.metadata = []string{fmt.Sprintf("The author likely wrote the draft in %s.", ResolveLanguage(catalog, hint, hint))}
	}
	p.content = contentBlock("Draft reply:", draft)
	p.output = []string{"Return only the translated reply text with no labels or surrounding quotes."}
	return nil
}

func generateReply(p *prompt, source models.SourceContent, reply models.ReplySettings) error {
	instructions := strings.TrimSpace(reply.Prompt)
	if instructions == "" {
		return ErrPromptRequired
	}

	p.role = []string{"You are RXtension, a personalised reply assistant."}
	p.language = []string{
		"Determine the tweet's language from the content and write the reply entirely in that language.",
		"If multiple languages appear, choose the one most prominent in the tweet and stay consistent.",
	}
	p.custom = []string{
		prefixed("Project or topic context to respect:\n", strings.TrimSpace(reply.Context)),
		"Follow the custom instructions verbatim:",
		instructions,
	}
	p.constraints = replyConstraints(reply)
	p.metadata = []string{
		prefixed("Tweet author: ", source.Author),
		prefixed("Display name: ", source.AuthorDisplay),
	}
	p.content = contentBlock("Tweet content:", source.Text)
	p.output = []string{"Return a single, ready-to-post reply. Exclude greetings, meta commentary, explanations, or surrounding quotes."}
	return nil
}

func generateDiscordReply(p *prompt, source models.SourceContent, reply models.ReplySettings) error {
	instructions := strings.TrimSpace(reply.Prompt)
	if instructions == "" {
		return ErrPromptRequired
	}

	p.role = []string{"You are RD, a collaborative Discord co-pilot who drafts concise, natural replies."}
	p.language = []string{
		"Determine the original message language from its content and write the reply entirely in that language.",
		"If the message mixes languages, reply in the language that dominates the message. Never switch to a different language or translate unless explicitly asked.",
	}
	p.tone = []string{
		"Keep phrasing conversational and fluent, even for technical topics. Avoid stiff, academic, or overly formal language.",
		"Do not restate the original message word-for-word. Respond directly to the author with clear, helpful guidance.",
	}
	p.custom = []string{
		prefixed("Background context to respect:\n", strings.TrimSpace(reply.Context)),
		"Custom reply guidance (follow these instructions exactly):",
		instructions,
	}
	p.constraints = replyConstraints(reply)
	p.metadata = []string{prefixed("Message author: ", source.Author)}
	p.content = contentBlock("Incoming message:", source.Text)
	p.output = []string{"Return only the reply text. Do not add prefixes, suffixes, summaries, or markdown code fences."}
	return nil
}

func replyConstraints(reply models.ReplySettings) []string {
	return []string{
		prefixed("Never use the following words, phrases, or behaviours: ", strings.TrimSpace(reply.Avoid)),
		WordCountDirective(reply.MinWords, reply.MaxWords),
	}
}

// WordCountDirective renders the reply length instruction. A bound of 0 is
// disabled; with both disabled the directive is empty.
func WordCountDirective(minWords, maxWords int) string {
	minWords = max(minWords, 0)
	maxWords = max(maxWords, 0)
	switch {
	case minWords > 0 && maxWords > 0:
		return fmt.Sprintf("Make the reply fall between %d and %d words. Rewrite and condense ideas so the reply stays complete, natural, and fully meaningful without exceeding %d words.", minWords, maxWords, maxWords)
	case maxWords > 0:
		return fmt.Sprintf("Keep the reply under %d words. If needed, summarise and rephrase so the message stays complete, natural, and fully meaningful without exceeding the limit.", maxWords)
	case minWords > 0:
		return fmt.Sprintf("Use at least %d words while keeping the reply natural and fully meaningful.", minWords)
	default:
		return ""
	}
}

func languageRules(catalog *models.Catalog, code, label string) []string {
	rules := []string{
		fmt.Sprintf("Write entirely in %s; never switch languages or include transliterations from other scripts.", label),
		"Respect the natural writing direction of the requested language and keep the word order authentic to native speakers.",
	}
	if catalog.IsRTL(code) {
		rules = append(rules, fmt.Sprintf("%s is written right to left; keep punctuation, numbers and mentions placed as a native reader expects.", label))
	}
	return rules
}

func contentBlock(heading, text string) string {
	return heading + "\n\"\"\"" + text + "\"\"\""
}

func productName(catalog *models.Catalog) string {
	return firstNonEmpty(catalog.Branding.ProductName, defaultProductName)
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
