// Package plugin ships the built-in pipeline handlers and a small registry
// that resolves configured handler names into pipeline stages.
package plugin

import (
	"fmt"

	"cssn/pipeline"
	"cssn/transform"
)

// Registry maps handler names to factories. Factories (not shared instances)
// because some handlers are stateful and need to be fresh per pipeline.
type Registry struct {
	inputs     map[string]func() pipeline.InputHandler
	transforms map[string]func() transform.Handler
	outputs    map[string]func() pipeline.OutputHandler
}

// NewRegistry returns a registry with all built-in handlers registered.
func NewRegistry() *Registry {
	return &Registry{
		inputs: map[string]func() pipeline.InputHandler{
			"normalize-newlines": func() pipeline.InputHandler { return NormalizeNewlines },
			"strip-comments":     func() pipeline.InputHandler { return StripComments },
		},
		transforms: map[string]func() transform.Handler{
			"variables": Variables,
		},
		outputs: map[string]func() pipeline.OutputHandler{
			"lint": func() pipeline.OutputHandler { return Lint },
		},
	}
}

// InputNames returns handler names usable in the input stage.
func (r *Registry) Inputs(names []string) ([]pipeline.InputHandler, error) {
	out := make([]pipeline.InputHandler, 0, len(names))
	for _, name := range names {
		factory, ok := r.inputs[name]
		if !ok {
			return nil, fmt.Errorf("unknown input handler %q", name)
		}
		out = append(out, factory())
	}
	return out, nil
}

// Transforms resolves transform-stage handler names, order preserved.
func (r *Registry) Transforms(names []string) ([]transform.Handler, error) {
	out := make([]transform.Handler, 0, len(names))
	for _, name := range names {
		factory, ok := r.transforms[name]
		if !ok {
			return nil, fmt.Errorf("unknown transform handler %q", name)
		}
		out = append(out, factory())
	}
	return out, nil
}

// Outputs resolves output-stage handler names, order preserved.
func (r *Registry) Outputs(names []string) ([]pipeline.OutputHandler, error) {
	out := make([]pipeline.OutputHandler, 0, len(names))
	for _, name := range names {
		factory, ok := r.outputs[name]
		if !ok {
			return nil, fmt.Errorf("unknown output handler %q", name)
		}
		out = append(out, factory())
	}
	return out, nil
}
