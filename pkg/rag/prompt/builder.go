package prompt

import (
	"fmt"
	"strings"

	"edu-assistant-be/internal/constant"
	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/store"
)

const (
	// ContextItemLimit is the number of retrieved documents rendered into the prompt
	ContextItemLimit   = 3
	contextBodyPreview = 500
)

// ContextualBuilder builds the grounded chat prompt for one user question
type ContextualBuilder struct {
	docs    []store.Document
	query   string
	history []llm.Message
}

// NewContextualBuilder creates a new contextual prompt builder
func NewContextualBuilder(docs []store.Document, query string, history []llm.Message) *ContextualBuilder {
	return &ContextualBuilder{
		docs:    docs,
		query:   query,
		history: history,
	}
}

// Context renders the retrieved documents into the grounding block. Empty when nothing was retrieved.
func (b *ContextualBuilder) Context() string {
	docs := b.docs
	if len(docs) == 0 {
		return ""
	}
	if len(docs) > ContextItemLimit {
		docs = docs[:ContextItemLimit]
	}

	var sb strings.Builder
	sb.WriteString(constant.GroundingContextHeader)
	for i, d := range docs {
		fmt.Fprintf(&sb, "\n\n%d. %s", i+1, d.Name)
		fmt.Fprintf(&sb, "\n   Key concepts: %s", strings.Join(d.KeyConcepts, ", "))
		fmt.Fprintf(&sb, "\n   %s...", truncateRunes(d.Content, contextBodyPreview))
	}
	return sb.String()
}

// SystemPrompt embeds the grounding block into the assistant instructions
func (b *ContextualBuilder) SystemPrompt() string {
	return fmt.Sprintf(constant.AssistantSystemPromptTemplate, b.Context())
}

// Build returns the system prompt, then the history in order, then the user question last.
func (b *ContextualBuilder) Build() []llm.Message {
	messages := make([]llm.Message, 0, len(b.history)+2)
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleSystem, Content: b.SystemPrompt()})
	messages = append(messages, b.history...)
	return append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: b.query})
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
