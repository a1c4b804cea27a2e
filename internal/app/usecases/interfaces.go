package usecases

import (
	"context"

	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

// CodeGenerator compiles graphs. Implemented by services.GenerateService.
type CodeGenerator interface {
	Options(o validation.GenerateOptions) codegen.Options
	Generate(g *graph.Graph, opts codegen.Options) *codegen.Result
	GenerateRequest(req *validation.GenerateRequest) *dto.GenerateResponse
	Validate(g *graph.Graph) *dto.ValidateResponse
}

// ProjectManager handles saved projects. Implemented by
// services.ProjectService.
type ProjectManager interface {
	Import(ctx context.Context, data []byte) (*project.Record, error)
	Update(ctx context.Context, id string, data []byte) (*project.Record, error)
	Get(ctx context.Context, id string) (*project.Record, error)
	Export(ctx context.Context, id string) (*project.Record, []byte, error)
	List(ctx context.Context, filter project.Filter) ([]dto.ProjectSummary, error)
	Delete(ctx context.Context, id string) error
}
