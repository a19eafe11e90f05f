package agents

import (
	"fmt"
	"sort"
)

// Registry holds a team of agents by name.
type Registry[C any] struct {
	agents map[string]*Agent[C]
}

// NewRegistry creates a registry with the given agents.
func NewRegistry[C any](agents ...*Agent[C]) *Registry[C] {
	r := &Registry[C]{agents: make(map[string]*Agent[C], len(agents))}
	for _, a := range agents {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an agent.
func (r *Registry[C]) Register(agent *Agent[C]) {
	r.agents[agent.Name] = agent
}

// Lookup returns the agent with the given name.
func (r *Registry[C]) Lookup(name string) (*Agent[C], error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", name)
	}
	return a, nil
}

// Names returns the registered agent names, sorted.
func (r *Registry[C]) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
