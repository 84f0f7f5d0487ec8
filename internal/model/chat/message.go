package chat

import "time"

// Sender identifies who authored a conversation entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// VisualClass is the presentation bucket a message renders in.
type VisualClass string

const (
	ClassUser           VisualClass = "user"
	ClassAssistant      VisualClass = "assistant"
	ClassAssistantError VisualClass = "assistant-error"
)

// Message is one entry of the on-screen conversation log.
type Message struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	Sender         Sender    `json:"sender"`
	Timestamp      time.Time `json:"timestamp"`
	AudioURL       string    `json:"audioUrl,omitempty"`
	ConversationID string    `json:"conversationId,omitempty"`
	IsVoice        bool      `json:"isVoice,omitempty"`
	IsError        bool      `json:"isError,omitempty"`
}

// Class derives the visual class from sender and error flag only.
func (m Message) Class() VisualClass {
	if m.Sender == SenderUser {
		return ClassUser
	}
	if m.IsError {
		return ClassAssistantError
	}
	return ClassAssistant
}

// HasAudio reports whether the message carries a playable reference.
func (m Message) HasAudio() bool {
	return m.AudioURL != ""
}
