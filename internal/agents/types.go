package agents

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/nibzard/prospector/internal/llm"
)

// DefaultMaxTurns bounds the number of model calls in one run.
const DefaultMaxTurns = 15

// ErrMaxTurnsExceeded is returned when a run does not finish within MaxTurns.
var ErrMaxTurnsExceeded = errors.New("max turns exceeded")

// Agent is an LLM persona with tools and handoff targets.
type Agent[C any] struct {
	Name string

	// Instructions is the system prompt.
	Instructions string

	// HandoffDescription is appended to the description of the
	// transfer tool other agents use to reach this one.
	HandoffDescription string

	Model    string
	Tools    []Tool[C]
	Handoffs []Handoff[C]
}

// Tool is a function the model can call.
type Tool[C any] interface {
	Spec() llm.ToolSpec

	// Call runs the tool. A returned error is reported to the model as
	// tool output; it does not end the run.
	Call(ctx context.Context, state *C, args json.RawMessage) (string, error)
}

// FunctionTool adapts a function to the Tool interface.
type FunctionTool[C any] struct {
	Name        string
	Description string
	Parameters  map[string]any
	Fn          func(ctx context.Context, state *C, args json.RawMessage) (string, error)
}

// Spec returns the tool definition sent to the model.
func (t FunctionTool[C]) Spec() llm.ToolSpec {
	params := t.Parameters
	if params == nil {
		params = emptyParameters()
	}
	return llm.ToolSpec{Name: t.Name, Description: t.Description, Parameters: params}
}

// Call invokes Fn.
func (t FunctionTool[C]) Call(ctx context.Context, state *C, args json.RawMessage) (string, error) {
	return t.Fn(ctx, state, args)
}

// Handoff lets an agent transfer the conversation to another agent.
type Handoff[C any] struct {
	Agent *Agent[C]

	// OnHandoff runs when the handoff is taken. An error aborts the run.
	OnHandoff func(ctx context.Context, state *C) error
}

// ToolName returns the name of the transfer tool for this handoff.
func (h Handoff[C]) ToolName() string {
	return HandoffToolName(h.Agent.Name)
}

func (h Handoff[C]) spec() llm.ToolSpec {
	desc := "Handoff to the " + h.Agent.Name + " agent to handle the request."
	if h.Agent.HandoffDescription != "" {
		desc += " " + h.Agent.HandoffDescription
	}
	return llm.ToolSpec{Name: h.ToolName(), Description: desc, Parameters: emptyParameters()}
}

var nonIdentifier = regexp.MustCompile(`[^a-z0-9]+`)

// HandoffToolName converts an agent name to its transfer tool name,
// e.g. "Cold Email Specialist" -> "transfer_to_cold_email_specialist".
func HandoffToolName(agentName string) string {
	slug := nonIdentifier.ReplaceAllString(strings.ToLower(agentName), "_")
	return "transfer_to_" + strings.Trim(slug, "_")
}

// handoffOutput is the tool output recorded when a handoff is taken.
func handoffOutput(agentName string) string {
	data, _ := json.Marshal(map[string]string{"assistant": agentName})
	return string(data)
}

func emptyParameters() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

// ItemType classifies the items produced during a run.
type ItemType string

const (
	ItemMessageOutput  ItemType = "message_output_item"
	ItemToolCall       ItemType = "tool_call_item"
	ItemToolCallOutput ItemType = "tool_call_output_item"
	ItemHandoffCall    ItemType = "handoff_call_item"
	ItemHandoffOutput  ItemType = "handoff_output_item"
)

// RunItem is one item produced during a run.
type RunItem struct {
	Type      ItemType
	AgentName string

	// Output is the item's text for messages and tool outputs, nil otherwise.
	Output any

	RawItem *RawItem
}

// RawItem is the underlying model-level record of an item.
type RawItem struct {
	Type      string // "message", "function_call" or "function_call_output"
	Name      string
	CallID    string
	Arguments string
	Output    any
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	Input         string
	FinalOutput   string
	LastAgentName string
	NewItems      []RunItem
}

// recommendedPromptPrefix is prepended to instructions of agents that take
// part in handoffs.
const recommendedPromptPrefix = `# System context
You are part of a multi-agent system designed to make agent coordination and execution easy. Agents uses two primary abstractions: **Agents** and **Handoffs**. An agent encompasses instructions and tools and can hand off a conversation to another agent when appropriate. Handoffs are achieved by calling a handoff function, generally named ` + "`transfer_to_<agent_name>`" + `. Transfers between agents are handled seamlessly in the background; do not mention or draw attention to these transfers in your conversation with the user.
`

// PromptWithHandoffInstructions prefixes instructions with the handoff
// system context.
func PromptWithHandoffInstructions(instructions string) string {
	return recommendedPromptPrefix + "\n\n" + instructions
}
