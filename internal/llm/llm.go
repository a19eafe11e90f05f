// Package llm provides a provider-neutral chat completion client with tool
// calling and structured output, backed by the OpenAI and Anthropic SDKs.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that requested tools.
	ToolCalls []ToolCall

	// ToolCallID links a tool message to the call it answers.
	ToolCallID string
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// ToolSpec describes a function the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema of the arguments object
}

// Schema requests a structured reply matching a JSON schema.
type Schema struct {
	Name   string
	Schema map[string]any
}

// Request is a single completion request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Tools       []ToolSpec
	Temperature *float64
	MaxTokens   int

	// JSONSchema asks for a reply matching the schema. JSONObject asks for
	// any JSON object. JSONSchema wins when both are set.
	JSONSchema *Schema
	JSONObject bool
}

// Response is the model reply.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client completes chat requests.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 {
	return &v
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// APIError wraps a provider error with its HTTP status.
type APIError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s api error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s api error: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Options configures a provider client.
type Options struct {
	BaseURL    string
	MaxRetries int
}

// New creates a client for the named provider.
func New(provider, apiKey string, opts Options) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, opts)
	default:
		return nil, fmt.Errorf("unknown llm provider %q (expected %s|%s)", provider, ProviderOpenAI, ProviderAnthropic)
	}
}

// KeyName returns the secret name holding the API key for a provider.
func KeyName(provider string) string {
	if strings.EqualFold(strings.TrimSpace(provider), ProviderAnthropic) {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}
