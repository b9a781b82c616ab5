package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature *float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// Apply resolves options on top of the provider defaults
func Apply(defaultModel string, defaultTemperature float64, opts ...Option) Options {
	options := Options{Model: defaultModel}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Model == "" {
		options.Model = defaultModel
	}
	if options.Temperature == nil {
		options.Temperature = &defaultTemperature
	}
	return options
}

// Response is a completion result. TokensUsed is nil when the backend does not report usage.
type Response struct {
	Content    string
	Model      string
	TokensUsed *int
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Response, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (*Response, error)
}
