package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	AssistantSystemPromptTemplate = `You are a helpful educational assistant. You help users understand and learn from their educational content.

%s

Provide clear, concise answers based on the content provided. If the content doesn't contain relevant information, acknowledge this and provide general guidance.`

	AssistantErrorReply = "I apologize, but I encountered an error while processing your message. Please try again."

	AssistantProcessingReply = "I'm processing your message and searching through your educational content. I'll have a response ready shortly!"

	GroundingContextHeader = "Based on your educational content:"
)
