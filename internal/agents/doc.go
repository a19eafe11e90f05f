// Package agents runs LLM agents that call tools and hand conversations
// off to each other.
//
// An Agent has instructions, a model, tools and handoff targets. Runner
// drives the tool-calling loop: every turn sends the conversation to the
// current agent's model together with its tools and one
// transfer_to_<agent> tool per handoff. Tool calls are executed and their
// outputs appended to the conversation; calling a handoff tool switches
// the current agent. A reply without tool calls ends the run.
//
// Agents are generic over the run context type C. Tools receive a pointer
// to the run's context value so they can read and update shared state.
//
// Run events are streamed to a LogWriter implementation, allowing real-time
// observability of agent execution. Each event includes a type, timestamp,
// and relevant content.
package agents
