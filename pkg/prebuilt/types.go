package prebuilt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// Config carries the knobs shared by every template. Empty fields take the
// palette defaults.
type Config struct {
	// AgentName names the primary agent.
	AgentName string
	// Input is the runner input.
	Input string
	// Trace wraps the generated entry point in a trace block.
	Trace bool
}

// Builder constructs a graph from a Config. Implementations must be pure
// and return a graph whose edges respect the port vocabulary.
type Builder interface {
	Name() string
	Description() string
	Build(cfg Config) (*graph.Graph, error)
}

// BuildFunc adapts a function to Builder.
type BuildFunc struct {
	NameStr string
	Desc    string
	Fn      func(cfg Config) (*graph.Graph, error)
}

func (b BuildFunc) Name() string        { return b.NameStr }
func (b BuildFunc) Description() string { return b.Desc }
func (b BuildFunc) Build(cfg Config) (*graph.Graph, error) {
	return b.Fn(cfg)
}

// NewBuildFunc creates a Builder from a function.
func NewBuildFunc(name, description string, fn func(cfg Config) (*graph.Graph, error)) BuildFunc {
	return BuildFunc{NameStr: name, Desc: description, Fn: fn}
}

// Registry holds named templates.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds or replaces a template.
func (r *Registry) Register(b Builder) {
	r.builders[b.Name()] = b
}

// MustRegister panics on duplicate names; useful during init() setup.
func (r *Registry) MustRegister(b Builder) {
	if _, exists := r.builders[b.Name()]; exists {
		panic(fmt.Sprintf("template already registered: %s", b.Name()))
	}
	r.builders[b.Name()] = b
}

// Get retrieves a named template. Lookup ignores case.
func (r *Registry) Get(name string) (Builder, bool) {
	b, ok := r.builders[strings.ToLower(name)]
	return b, ok
}

// Names lists the registered templates in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build looks up name and builds it with cfg.
func (r *Registry) Build(name string, cfg Config) (*graph.Graph, error) {
	b, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return b.Build(cfg)
}

// DefaultRegistry holds the built-in templates.
var DefaultRegistry = NewRegistry()
