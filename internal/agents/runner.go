package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nibzard/prospector/internal/llm"
)

// Runner drives agent runs against an LLM client.
type Runner[C any] struct {
	Client      llm.Client
	MaxTurns    int
	Temperature *float64
	LogWriter   LogWriter
}

// Run starts a conversation with start and the user input, and loops until
// an agent replies without calling tools. state is shared with every tool
// and handoff callback.
func (r *Runner[C]) Run(ctx context.Context, start *Agent[C], input string, state *C) (*RunResult, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("runner has no llm client")
	}
	if start == nil {
		return nil, fmt.Errorf("runner has no starting agent")
	}
	logWriter := normalizeLogWriter(r.LogWriter)
	maxTurns := r.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	result := &RunResult{Input: input}
	history := []llm.Message{llm.UserMessage(input)}
	current := start
	writeEvent(logWriter, LogEvent{Type: EventAgentStart, Agent: current.Name})

	for turn := 1; ; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if turn > maxTurns {
			writeEvent(logWriter, LogEvent{Type: EventError, Agent: current.Name, Content: ErrMaxTurnsExceeded.Error()})
			return nil, fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, maxTurns)
		}

		tools, handoffs, specs := current.index()
		resp, err := r.Client.Complete(ctx, llm.Request{
			Model:       current.Model,
			System:      current.Instructions,
			Messages:    history,
			Tools:       specs,
			Temperature: r.Temperature,
		})
		if err != nil {
			writeEvent(logWriter, LogEvent{Type: EventError, Agent: current.Name, Content: err.Error()})
			return nil, fmt.Errorf("agent %s: %w", current.Name, err)
		}

		history = append(history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		if resp.Content != "" {
			result.NewItems = append(result.NewItems, RunItem{
				Type:      ItemMessageOutput,
				AgentName: current.Name,
				Output:    resp.Content,
				RawItem:   &RawItem{Type: "message", Output: resp.Content},
			})
			writeEvent(logWriter, LogEvent{Type: EventAssistantMessage, Agent: current.Name, Content: resp.Content})
		}

		if len(resp.ToolCalls) == 0 {
			result.FinalOutput = resp.Content
			result.LastAgentName = current.Name
			return result, nil
		}

		var next *Agent[C]
		for _, call := range resp.ToolCalls {
			if h, ok := handoffs[call.Name]; ok {
				result.NewItems = append(result.NewItems, RunItem{
					Type:      ItemHandoffCall,
					AgentName: current.Name,
					RawItem:   &RawItem{Type: "function_call", Name: call.Name, CallID: call.ID, Arguments: call.Arguments},
				})

				output := handoffOutput(h.Agent.Name)
				if next != nil {
					output = "Multiple handoffs detected, ignoring this one."
				} else {
					if h.OnHandoff != nil {
						if err := h.OnHandoff(ctx, state); err != nil {
							writeEvent(logWriter, LogEvent{Type: EventError, Agent: current.Name, Content: err.Error()})
							return nil, fmt.Errorf("handoff %s -> %s: %w", current.Name, h.Agent.Name, err)
						}
					}
					next = h.Agent
					writeEvent(logWriter, LogEvent{Type: EventHandoff, Agent: current.Name, Target: h.Agent.Name})
				}

				result.NewItems = append(result.NewItems, RunItem{
					Type:      ItemHandoffOutput,
					AgentName: current.Name,
					Output:    output,
					RawItem:   &RawItem{Type: "function_call_output", CallID: call.ID, Output: output},
				})
				history = append(history, llm.Message{Role: llm.RoleTool, ToolCallID: call.ID, Content: output})
				continue
			}

			result.NewItems = append(result.NewItems, RunItem{
				Type:      ItemToolCall,
				AgentName: current.Name,
				RawItem:   &RawItem{Type: "function_call", Name: call.Name, CallID: call.ID, Arguments: call.Arguments},
			})
			writeEvent(logWriter, LogEvent{Type: EventTool, Agent: current.Name, Tool: call.Name})

			started := time.Now()
			output := r.callTool(ctx, tools, call, state, logWriter, current.Name)

			result.NewItems = append(result.NewItems, RunItem{
				Type:      ItemToolCallOutput,
				AgentName: current.Name,
				Output:    output,
				RawItem:   &RawItem{Type: "function_call_output", CallID: call.ID, Output: output},
			})
			writeEvent(logWriter, LogEvent{
				Type:     EventToolOutput,
				Agent:    current.Name,
				Tool:     call.Name,
				Content:  output,
				Duration: time.Since(started),
			})
			history = append(history, llm.Message{Role: llm.RoleTool, ToolCallID: call.ID, Content: output})
		}

		if next != nil {
			current = next
			writeEvent(logWriter, LogEvent{Type: EventAgentStart, Agent: current.Name})
		}
	}
}

func (r *Runner[C]) callTool(ctx context.Context, tools map[string]Tool[C], call llm.ToolCall, state *C, logWriter LogWriter, agentName string) string {
	tool, ok := tools[call.Name]
	if !ok {
		msg := fmt.Sprintf("Tool %s not found for agent %s", call.Name, agentName)
		writeEvent(logWriter, LogEvent{Type: EventError, Agent: agentName, Tool: call.Name, Content: msg})
		return msg
	}

	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	output, err := tool.Call(ctx, state, args)
	if err != nil {
		writeEvent(logWriter, LogEvent{Type: EventError, Agent: agentName, Tool: call.Name, Content: err.Error()})
		return "An error occurred while running the tool. Please try again. Error: " + err.Error()
	}
	return output
}

// index maps tool and handoff names to their implementations and returns
// the tool definitions for the model.
func (a *Agent[C]) index() (map[string]Tool[C], map[string]Handoff[C], []llm.ToolSpec) {
	tools := make(map[string]Tool[C], len(a.Tools))
	handoffs := make(map[string]Handoff[C], len(a.Handoffs))
	specs := make([]llm.ToolSpec, 0, len(a.Tools)+len(a.Handoffs))

	for _, t := range a.Tools {
		spec := t.Spec()
		tools[spec.Name] = t
		specs = append(specs, spec)
	}
	for _, h := range a.Handoffs {
		if h.Agent == nil {
			continue
		}
		handoffs[h.ToolName()] = h
		specs = append(specs, h.spec())
	}
	return tools, handoffs, specs
}

func writeEvent(w LogWriter, event LogEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = w.Write(event)
}
