package prompt

import (
	"strings"
	"testing"

	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	tests := []struct {
		name string
		docs []store.Document
		want string
	}{
		{name: "nothing retrieved", docs: nil, want: ""},
		{
			name: "short bodies still get ellipsis",
			docs: []store.Document{
				{Name: "A", Content: "short", KeyConcepts: []string{"x"}},
				{Name: "B", Content: "body", KeyConcepts: nil},
			},
			want: "Based on your educational content:\n\n1. A\n   Key concepts: x\n   short...\n\n2. B\n   Key concepts: \n   body...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewContextualBuilder(tt.docs, "q", nil).Context())
		})
	}
}

func TestContextTruncatesItemsAndBodies(t *testing.T) {
	docs := []store.Document{
		{Name: "One", Content: strings.Repeat("é", 600)},
		{Name: "Two"},
		{Name: "Three"},
		{Name: "Four"},
	}

	got := NewContextualBuilder(docs, "q", nil).Context()

	assert.Contains(t, got, "   "+strings.Repeat("é", 500)+"...")
	assert.NotContains(t, got, strings.Repeat("é", 501))
	assert.Contains(t, got, "3. Three")
	assert.NotContains(t, got, "Four")
}

func TestBuildOrdersMessages(t *testing.T) {
	history := []llm.Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	docs := []store.Document{{Name: "Thermodynamics", Content: "Entropy rises.", KeyConcepts: []string{"entropy", "heat"}}}

	msgs := NewContextualBuilder(docs, "What is entropy?", history).Build()

	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "You are a helpful educational assistant.")
	assert.Contains(t, msgs[0].Content, "Key concepts: entropy, heat")
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, llm.Message{Role: "user", Content: "What is entropy?"}, msgs[3])
}
