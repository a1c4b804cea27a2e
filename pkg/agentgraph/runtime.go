package agentgraph

import (
	"context"

	"github.com/agentgraph/agentgraph/internal/adapters/repository/memory"
	"github.com/agentgraph/agentgraph/internal/app/services"
	"github.com/agentgraph/agentgraph/internal/codegen"
	coregraph "github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/prebuilt"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

// Re-export core types for convenience
type (
	Graph    = coregraph.Graph
	Node     = coregraph.Node
	Edge     = coregraph.Edge
	Kind     = coregraph.Kind
	Options  = codegen.Options
	Result   = codegen.Result
	Document = project.Document
	Record   = project.Record
)

// DefaultOptions returns topological ordering with name disambiguation.
func DefaultOptions() Options { return codegen.DefaultOptions() }

// Runtime compiles and stores projects. The default runtime keeps projects
// in memory and is suitable for local usage and tests.
type Runtime struct {
	gen      *services.GenerateService
	projects *services.ProjectService
}

// NewRuntime constructs a runtime generating with opts over an in-memory store.
func NewRuntime(opts Options) *Runtime {
	return NewRuntimeWithStore(opts, memory.New())
}

// NewRuntimeWithStore constructs a runtime over store.
func NewRuntimeWithStore(opts Options, store project.Store) *Runtime {
	return &Runtime{
		gen:      services.NewGenerateService(opts),
		projects: services.NewProjectService(store),
	}
}

// Generate compiles g with the runtime's options.
func (rt *Runtime) Generate(g *Graph) *Result {
	return rt.gen.Generate(g, rt.gen.Defaults())
}

// Compile imports a project file and compiles it.
func (rt *Runtime) Compile(data []byte) (*Result, error) {
	doc, err := project.Import(data)
	if err != nil {
		return nil, err
	}
	return rt.Generate(doc.Graph()), nil
}

// Validate imports a project file and reports its structural problems.
func (rt *Runtime) Validate(data []byte) (validation.ValidationErrors, error) {
	doc, err := project.Import(data)
	if err != nil {
		return nil, err
	}
	return validation.ValidateDocument(doc), nil
}

// Save imports a project file and stores it under a new id.
func (rt *Runtime) Save(ctx context.Context, data []byte) (*Record, error) {
	return rt.projects.Import(ctx, data)
}

// Code compiles the stored project id.
func (rt *Runtime) Code(ctx context.Context, id string) (*Result, error) {
	rec, err := rt.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rt.Generate(rec.Document.Graph()), nil
}

// Template builds a named template and exports it as a project file.
func Template(name string, cfg prebuilt.Config, projectName string) ([]byte, error) {
	g, err := prebuilt.DefaultRegistry.Build(name, cfg)
	if err != nil {
		return nil, err
	}
	if projectName == "" {
		projectName = project.DefaultName
	}
	return project.Export(g.Nodes, g.Edges, projectName, "")
}
