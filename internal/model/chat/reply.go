package chat

// TextRequest is the JSON body of POST /api/chat.
type TextRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email,omitempty"`
}

// Reply is the body returned by both /api/chat and /api/voice.
type Reply struct {
	Response       string `json:"response"`
	AudioURL       string `json:"audio_url,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ConversationRecord mirrors one stored exchange on the service side.
type ConversationRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	UserEmail   string `json:"user_email,omitempty"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	Timestamp   string `json:"timestamp"`
	AudioPath   string `json:"audio_path,omitempty"`
}

// ConversationList wraps GET /api/conversations.
type ConversationList struct {
	Conversations []ConversationRecord `json:"conversations"`
}

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}
