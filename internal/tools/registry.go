package tools

import (
	"context"
	"fmt"

	"voicedesk-agent/internal/activity"
	"voicedesk-agent/internal/intake"
	"voicedesk-agent/internal/nav"
)

// Registry exposes the fixed set of client tools the remote session may
// invoke by name.
type Registry struct {
	tools map[string]Tool
	order []string
	log   *activity.Log
}

// NewRegistry registers every client tool against the shared stores.
func NewRegistry(form *intake.Store, bridge *nav.Bridge, log *activity.Log) *Registry {
	r := &Registry{tools: make(map[string]Tool), log: log}

	r.register(&NavigateScreenTool{bridge: bridge})
	r.register(&FillFormTool{form: form, log: log})
	r.register(&SubmitFormTool{form: form, log: log})
	r.register(&ReadFormTool{form: form})
	r.register(&ResetFormTool{form: form, log: log})

	return r
}

func (r *Registry) register(tool Tool) {
	r.tools[tool.Name()] = tool
	r.order = append(r.order, tool.Name())
}

// Dispatch normalizes the raw payload and routes it to the matching
// tool. A handler failure is logged exactly once here before it is
// surfaced to the remote session. Unknown names are reported back to
// the remote session; it is the session layer's job to log them as
// unhandled.
func (r *Registry) Dispatch(ctx context.Context, name string, raw interface{}) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}

	result, err := tool.Execute(ctx, NormalizePayload(raw))
	if err != nil {
		r.log.Append(activity.SourceSystem, fmt.Sprintf("Tool %s failed: %v", name, err))
		return "", err
	}
	return result, nil
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the named tool for direct inspection (used by the MCP
// surface and tests).
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}
