package css

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Plugin is a single stage of stylesheet transformation. Once is invoked one
// time per parsed stylesheet with its root and mutates the tree in place.
type Plugin interface {
	Name() string
	Once(root *Root) error
}

// Processor parses stylesheet, runs plugins in order and serializes result.
type Processor struct {
	parser  *Parser
	plugins []Plugin
	log     *zap.Logger
}

// Result holds transformed stylesheet.
type Result struct {
	Root *Root
	CSS  string
}

// NewProcessor creates processor running plugins in the order given.
func NewProcessor(log *zap.Logger, plugins ...Plugin) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		parser:  NewParser(log),
		plugins: plugins,
		log:     log.Named("css-processor"),
	}
}

// Plugins returns names of configured plugins in execution order.
func (p *Processor) Plugins() []string {
	names := make([]string, 0, len(p.plugins))
	for _, pl := range p.plugins {
		names = append(names, pl.Name())
	}
	return names
}

// Parse builds stylesheet tree without running plugins. Recoverable syntax
// problems are logged and kept in Root.Warnings.
func (p *Processor) Parse(data []byte, source string) (*Root, error) {
	root, err := p.parser.Parse(data, source)
	if err != nil {
		return nil, err
	}
	for _, w := range root.Warnings {
		p.log.Warn("Stylesheet problem", zap.String("source", source), zap.String("warning", w))
	}
	return root, nil
}

// Process parses data and applies all plugins to the resulting tree.
func (p *Processor) Process(data []byte, source string) (*Result, error) {
	root, err := p.Parse(data, source)
	if err != nil {
		return nil, err
	}
	if err := p.Run(root); err != nil {
		return nil, err
	}
	return &Result{Root: root, CSS: root.String()}, nil
}

// Run applies all plugins to already parsed tree.
func (p *Processor) Run(root *Root) error {
	for _, pl := range p.plugins {
		start := time.Now()
		if err := pl.Once(root); err != nil {
			return fmt.Errorf("plugin %s failed on %q: %w", pl.Name(), root.Source, err)
		}
		p.log.Debug("Plugin done", zap.String("plugin", pl.Name()), zap.String("source", root.Source), zap.Duration("elapsed", time.Since(start)))
	}
	return nil
}
