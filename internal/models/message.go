package models

// Message actions accepted by the router.
const (
	ActionGetConfig               = "getConfig"
	ActionGetTxConfig             = "getTxConfig"
	ActionTranslateTweet          = "translateTweet"
	ActionTranslateDiscordMessage = "translateDiscordMessage"
	ActionTranslateReplyDraft     = "translateReplyDraft"
	ActionGenerateReply           = "generateReply"
	ActionGenerateDiscordReply    = "generateDiscordReply"
)

// KnownAction reports whether action is one of the router actions.
func KnownAction(action string) bool {
	switch action {
	case ActionGetConfig, ActionGetTxConfig,
		ActionTranslateTweet, ActionTranslateDiscordMessage, ActionTranslateReplyDraft,
		ActionGenerateReply, ActionGenerateDiscordReply:
		return true
	}
	return false
}

// MessageRequest is the inbound message from a UI collaborator. Type is an
// alias of Action kept for older callers.
type MessageRequest struct {
	Action         string         `json:"action,omitempty"`
	Type           string         `json:"type,omitempty"`
	TweetContent   *SourceContent `json:"tweetContent,omitempty"`
	MessageContent *SourceContent `json:"messageContent,omitempty"`
	Text           string         `json:"text,omitempty"`
	TargetLanguage string         `json:"targetLanguage,omitempty"`
	SourceLanguage string         `json:"sourceLanguage,omitempty"`
	ToneID         string         `json:"toneId,omitempty"`
	Context        string         `json:"context,omitempty"`
}

// Name returns the requested action.
func (r MessageRequest) Name() string {
	if r.Action != "" {
		return r.Action
	}
	return r.Type
}

// SourceContent is a tweet or chat message scraped by a content script.
type SourceContent struct {
	Text          string `json:"text"`
	Author        string `json:"author,omitempty"`
	AuthorDisplay string `json:"authorDisplay,omitempty"`
	Language      string `json:"language,omitempty"`
}

// MessageResponse is the envelope returned for every message.
type MessageResponse struct {
	Success     bool     `json:"success"`
	Translation string   `json:"translation,omitempty"`
	Reply       string   `json:"reply,omitempty"`
	Config      *Catalog `json:"config,omitempty"`
	SettingsKey string   `json:"settingsKey,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func TranslationResponse(text string) MessageResponse {
	return MessageResponse{Success: true, Translation: text}
}

func ReplyResponse(text string) MessageResponse {
	return MessageResponse{Success: true, Reply: text}
}

func ConfigResponse(catalog *Catalog, settingsKey string) MessageResponse {
	return MessageResponse{Success: true, Config: catalog, SettingsKey: settingsKey}
}

func FailureResponse(message string) MessageResponse {
	return MessageResponse{Success: false, Error: message}
}
