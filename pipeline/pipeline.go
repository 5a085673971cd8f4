// Package pipeline sequences the full preprocessing run: input handlers over
// the raw text, parse, transform handlers over the tree, render, output
// handlers over the flat CSS. Every stage is fail-fast.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"cssn/ast"
	"cssn/parser"
	"cssn/render"
	"cssn/transform"
)

// InputHandler rewrites raw source text before parsing.
type InputHandler func(src string) (string, error)

// OutputHandler rewrites rendered CSS. It also receives the tree the output
// was rendered from, for handlers that need structural information.
type OutputHandler func(out string, tree *ast.Tree) (string, error)

// Pipeline is one configured processing chain. A Pipeline is immutable after
// construction; independent Process calls share no state and may run
// concurrently.
type Pipeline struct {
	log *zap.Logger

	parser   *parser.Parser
	renderer *render.Renderer

	inputs     []InputHandler
	transforms []transform.Handler
	outputs    []OutputHandler
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInput appends input-stage handlers, applied in the order given.
func WithInput(handlers ...InputHandler) Option {
	return func(p *Pipeline) { p.inputs = append(p.inputs, handlers...) }
}

// WithTransform appends transform-stage handlers, applied in the order given.
func WithTransform(handlers ...transform.Handler) Option {
	return func(p *Pipeline) { p.transforms = append(p.transforms, handlers...) }
}

// WithOutput appends output-stage handlers, applied in the order given.
func WithOutput(handlers ...OutputHandler) Option {
	return func(p *Pipeline) { p.outputs = append(p.outputs, handlers...) }
}

// New creates a pipeline. A nil logger is replaced with a no-op one.
func New(log *zap.Logger, options ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pipeline")
	p := &Pipeline{
		log:      log,
		parser:   parser.NewParser(log),
		renderer: render.NewRenderer(log),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Process runs src through the whole chain and returns the flat CSS.
func (p *Pipeline) Process(src string) (string, error) {
	for i, h := range p.inputs {
		var err error
		if src, err = h(src); err != nil {
			return "", fmt.Errorf("input handler %d: %w", i, err)
		}
	}
	p.log.Debug("Input stage done", zap.Int("handlers", len(p.inputs)), zap.Int("bytes", len(src)))

	tree, err := p.parser.Parse(src)
	if err != nil {
		return "", err
	}

	if err := transform.Apply(tree, p.transforms); err != nil {
		return "", err
	}
	p.log.Debug("Transform stage done", zap.Int("handlers", len(p.transforms)))

	out, err := p.renderer.Render(tree)
	if err != nil {
		return "", err
	}

	for i, h := range p.outputs {
		if out, err = h(out, tree); err != nil {
			return "", fmt.Errorf("output handler %d: %w", i, err)
		}
	}
	p.log.Debug("Output stage done", zap.Int("handlers", len(p.outputs)), zap.Int("bytes", len(out)))
	return out, nil
}
