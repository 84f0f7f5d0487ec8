package assistant

const (
	endpointChat          = "/api/chat"
	endpointVoice         = "/api/voice"
	endpointConversations = "/api/conversations"
	endpointHealth        = "/api/health"
)
